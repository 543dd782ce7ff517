package rbo

import (
	"fmt"
	"iter"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

// OverlapMode selects how overlap at a depth is measured.
type OverlapMode int

const (
	// OverlapCorrected scales agreement by the evaluated depth, capped at the
	// shorter list's length. Overlap never exceeds depth, even with ties.
	OverlapCorrected OverlapMode = iota

	// OverlapRaw counts shared items at a depth. Tie-sets can push it past
	// the depth itself.
	OverlapRaw
)

// String returns the configuration name of the mode.
func (m OverlapMode) String() string {
	switch m {
	case OverlapCorrected:
		return "corrected"
	case OverlapRaw:
		return "raw"
	default:
		return fmt.Sprintf("OverlapMode(%d)", int(m))
	}
}

// ParseOverlapMode parses "corrected" or "raw". The empty string selects
// OverlapCorrected.
func ParseOverlapMode(s string) (OverlapMode, error) {
	switch s {
	case "", "corrected":
		return OverlapCorrected, nil
	case "raw":
		return OverlapRaw, nil
	default:
		return 0, apperrors.ValidationError(
			fmt.Sprintf("invalid overlap mode: %s (must be corrected or raw)", s))
	}
}

// Profile holds intersection and depth-set sizes for every depth of a pair of
// lists, computed in one pass. Build a new Profile per comparison.
type Profile struct {
	len1, len2 int
	mode       OverlapMode

	// Index d-1 holds the values at depth d.
	inter []int
	size1 []int
	size2 []int
}

// NewProfile profiles l1 against l2 down to the length of the longer list.
func NewProfile[T comparable](l1, l2 List[T], mode OverlapMode) *Profile {
	return newProfile(l1, l2, max(len(l1), len(l2)), mode)
}

func newProfile[T comparable](l1, l2 List[T], limit int, mode OverlapMode) *Profile {
	n := min(max(len(l1), len(l2)), max(limit, 0))
	p := &Profile{
		len1:  len(l1),
		len2:  len(l2),
		mode:  mode,
		inter: make([]int, n),
		size1: make([]int, n),
		size2: make([]int, n),
	}

	seen1 := make(map[T]struct{})
	seen2 := make(map[T]struct{})
	inter := 0
	for d := 0; d < n; d++ {
		if d < len(l1) {
			for _, v := range l1[d].items {
				if _, ok := seen1[v]; ok {
					continue
				}
				seen1[v] = struct{}{}
				if _, ok := seen2[v]; ok {
					inter++
				}
			}
		}
		if d < len(l2) {
			for _, v := range l2[d].items {
				if _, ok := seen2[v]; ok {
					continue
				}
				seen2[v] = struct{}{}
				if _, ok := seen1[v]; ok {
					inter++
				}
			}
		}
		p.inter[d] = inter
		p.size1[d] = len(seen1)
		p.size2[d] = len(seen2)
	}
	return p
}

// Len1 returns the number of entries in the first list.
func (p *Profile) Len1() int { return p.len1 }

// Len2 returns the number of entries in the second list.
func (p *Profile) Len2() int { return p.len2 }

// Mode returns the overlap mode the profile was built with.
func (p *Profile) Mode() OverlapMode { return p.mode }

// RawOverlap returns the intersection size and both depth-set sizes at depth.
func (p *Profile) RawOverlap(depth int) (inter, size1, size2 int) {
	if depth <= 0 || len(p.inter) == 0 {
		return 0, 0, 0
	}
	i := min(depth, len(p.inter)) - 1
	return p.inter[i], p.size1[i], p.size2[i]
}

// Agreement returns 2|A∩B| / (|A|+|B|) for the depth sets A and B at depth.
func (p *Profile) Agreement(depth int) (float64, error) {
	inter, n1, n2 := p.RawOverlap(depth)
	if n1+n2 == 0 {
		return 0, apperrors.ArithmeticError(
			fmt.Sprintf("agreement undefined at depth %d: both depth sets are empty", depth))
	}
	return float64(2*inter) / float64(n1+n2), nil
}

// Overlap returns the overlap at depth according to the profile's mode.
func (p *Profile) Overlap(depth int) (float64, error) {
	if p.mode == OverlapRaw {
		inter, _, _ := p.RawOverlap(depth)
		return float64(inter), nil
	}
	a, err := p.Agreement(depth)
	if err != nil {
		return 0, err
	}
	return a * float64(min(depth, p.len1, p.len2)), nil
}

// proportion is the per-depth overlap ratio summed by Ext: agreement when
// tie-corrected, overlap/depth when raw.
func (p *Profile) proportion(depth int) (float64, error) {
	if p.mode == OverlapRaw {
		inter, _, _ := p.RawOverlap(depth)
		return float64(inter) / float64(depth), nil
	}
	return p.Agreement(depth)
}

// CumulativeAgreement returns the agreement at depths 1..depth. The sequence
// can be ranged over any number of times.
func (p *Profile) CumulativeAgreement(depth int) (iter.Seq[float64], error) {
	if depth > 0 {
		// Depth sets only grow, so depth 1 is the only place agreement can fail.
		if _, err := p.Agreement(1); err != nil {
			return nil, err
		}
	}
	return func(yield func(float64) bool) {
		for d := 1; d <= depth; d++ {
			a, _ := p.Agreement(d)
			if !yield(a) {
				return
			}
		}
	}, nil
}

// RawOverlap returns the number of items shared by the depth sets of l1 and
// l2 at depth, along with the size of each depth set.
func RawOverlap[T comparable](l1, l2 List[T], depth int) (inter, size1, size2 int) {
	set1, set2 := DepthSet(l1, depth), DepthSet(l2, depth)
	for v := range set1 {
		if _, ok := set2[v]; ok {
			inter++
		}
	}
	return inter, len(set1), len(set2)
}

// Agreement returns the Dice coefficient of the depth sets of l1 and l2.
// It fails when both depth sets are empty.
func Agreement[T comparable](l1, l2 List[T], depth int) (float64, error) {
	return newProfile(l1, l2, depth, OverlapCorrected).Agreement(depth)
}

// Overlap returns the tie-corrected overlap of l1 and l2 at depth: agreement
// scaled by min(depth, len(l1), len(l2)). Without ties it equals the raw
// intersection size.
func Overlap[T comparable](l1, l2 List[T], depth int) (float64, error) {
	return newProfile(l1, l2, depth, OverlapCorrected).Overlap(depth)
}

// CumulativeAgreement returns the agreement of l1 and l2 at depths 1..depth.
func CumulativeAgreement[T comparable](l1, l2 List[T], depth int) (iter.Seq[float64], error) {
	return newProfile(l1, l2, depth, OverlapCorrected).CumulativeAgreement(depth)
}
