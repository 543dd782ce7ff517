package rbo

import (
	"fmt"
	"math"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

// AverageOverlap returns the mean agreement over depths 1..depth. A depth of
// zero or less defaults to the length of the shorter list.
func (p *Profile) AverageOverlap(depth int) (float64, error) {
	if depth <= 0 {
		depth = min(p.len1, p.len2)
	}
	if depth == 0 {
		return 0, apperrors.ArithmeticError("average overlap undefined at depth 0")
	}
	seq, err := p.CumulativeAgreement(depth)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for a := range seq {
		sum += a
	}
	return sum / float64(depth), nil
}

// AtDepth returns RBO truncated at depth, (1-p) Σ p^(d-1) A_d for
// d = 1..depth. A depth of zero or less defaults to the length of the shorter
// list.
func (p *Profile) AtDepth(prob float64, depth int) (float64, error) {
	if depth <= 0 {
		depth = min(p.len1, p.len2)
	}
	seq, err := p.CumulativeAgreement(depth)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	weight := 1.0
	for a := range seq {
		sum += weight * a
		weight *= prob
	}
	return (1 - prob) * sum, nil
}

// Min returns the tight lower bound on RBO given the prefixes down to depth.
// A depth of zero or less defaults to the length of the shorter list.
// It fails for p = 0 and p = 1.
func (p *Profile) Min(prob float64, depth int) (float64, error) {
	if err := openUnit("min", prob); err != nil {
		return 0, err
	}
	if depth <= 0 {
		depth = min(p.len1, p.len2)
	}
	xk, err := p.Overlap(depth)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for d := 1; d <= depth; d++ {
		xd, err := p.Overlap(d)
		if err != nil {
			return 0, err
		}
		sum += math.Pow(prob, float64(d)) / float64(d) * (xd - xk)
	}
	logTerm := xk * math.Log(1-prob)
	return (1 - prob) / prob * (sum - logTerm), nil
}

// Res returns the upper bound on the RBO mass beyond the end of the longer
// list. It fails for p = 0 and p = 1.
func (p *Profile) Res(prob float64) (float64, error) {
	if err := openUnit("res", prob); err != nil {
		return 0, err
	}
	s, l := p.shortLong()
	xl, err := p.Overlap(l)
	if err != nil {
		return 0, err
	}
	// Tie correction makes xl fractional; f bounds an integer range.
	f := int(math.Ceil(float64(l+s) - xl))

	term1 := float64(s) * harmonicPowers(prob, s+1, f)
	term2 := float64(l) * harmonicPowers(prob, l+1, f)
	term3 := xl * (math.Log(1/(1-prob)) - harmonicPowers(prob, 1, f))

	return math.Pow(prob, float64(s)) + math.Pow(prob, float64(l)) - math.Pow(prob, float64(f)) -
		(1-prob)/prob*(term1+term2+term3), nil
}

// Ext returns the RBO point estimate, extrapolating the agreement seen at the
// end of the shorter list across the rest of the longer one and beyond.
// It fails for p = 0 and when either list is empty.
func (p *Profile) Ext(prob float64) (float64, error) {
	if prob == 0 {
		return 0, apperrors.ArithmeticError("ext undefined for p = 0").WithDetail("p", "0")
	}
	s, l := p.shortLong()
	xl, err := p.Overlap(l)
	if err != nil {
		return 0, err
	}
	xs, err := p.Overlap(s)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return 0, apperrors.ArithmeticError("ext undefined for an empty list")
	}

	sum1 := 0.0
	for d := 1; d <= l; d++ {
		a, err := p.proportion(d)
		if err != nil {
			return 0, err
		}
		sum1 += math.Pow(prob, float64(d)) * a
	}
	sum2 := 0.0
	for d := s + 1; d <= l; d++ {
		sum2 += math.Pow(prob, float64(d)) * xs * float64(d-s) / float64(s) / float64(d)
	}

	term1 := (1 - prob) / prob * (sum1 + sum2)
	term2 := math.Pow(prob, float64(l)) * ((xl-xs)/float64(l) + xs/float64(s))
	return term1 + term2, nil
}

// shortLong returns the lengths of the shorter and the longer list.
func (p *Profile) shortLong() (s, l int) {
	return min(p.len1, p.len2), max(p.len1, p.len2)
}

// harmonicPowers returns Σ p^d / d for d = from..to, or 0 for an empty range.
func harmonicPowers(p float64, from, to int) float64 {
	sum := 0.0
	for d := from; d <= to; d++ {
		sum += math.Pow(p, float64(d)) / float64(d)
	}
	return sum
}

// openUnit rejects the endpoints of [0, 1], where the bounds divide by p or
// take the logarithm of 1-p.
func openUnit(estimator string, p float64) error {
	if p == 0 || p == 1 {
		return apperrors.ArithmeticError(fmt.Sprintf("%s undefined for p = %g", estimator, p)).
			WithDetail("p", fmt.Sprintf("%g", p))
	}
	return nil
}

// AverageOverlap returns the mean agreement of l1 and l2 over depths
// 1..depth. A depth of zero or less defaults to the shorter list's length.
func AverageOverlap[T comparable](l1, l2 List[T], depth int) (float64, error) {
	return NewProfile(l1, l2, OverlapCorrected).AverageOverlap(depth)
}

// AtDepth returns RBO of l1 and l2 truncated at depth.
func AtDepth[T comparable](l1, l2 List[T], p float64, depth int) (float64, error) {
	return NewProfile(l1, l2, OverlapCorrected).AtDepth(p, depth)
}

// Min returns the lower bound on RBO of l1 and l2 evaluated down to depth.
func Min[T comparable](l1, l2 List[T], p float64, depth int) (float64, error) {
	return NewProfile(l1, l2, OverlapCorrected).Min(p, depth)
}

// Res returns the residual upper bound of l1 and l2.
func Res[T comparable](l1, l2 List[T], p float64) (float64, error) {
	return NewProfile(l1, l2, OverlapCorrected).Res(p)
}

// Ext returns the extrapolated RBO point estimate of l1 and l2.
func Ext[T comparable](l1, l2 List[T], p float64) (float64, error) {
	return NewProfile(l1, l2, OverlapCorrected).Ext(p)
}
