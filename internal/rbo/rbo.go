package rbo

import (
	"fmt"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

// DefaultP is the weighting parameter used when none is configured.
// At 0.9 the first ten ranks carry about 86% of the weight.
const DefaultP = 0.9

// Result holds the three RBO estimates for one pair of lists.
type Result struct {
	// Min is the lower bound given the evaluated prefixes.
	Min float64 `json:"min" yaml:"min"`

	// Res is the upper bound on the contribution of unseen ranks.
	Res float64 `json:"res" yaml:"res"`

	// Ext is the extrapolated point estimate.
	Ext float64 `json:"ext" yaml:"ext"`
}

// Options configures a comparison.
type Options struct {
	// Mode selects tie-corrected (default) or paper-literal overlap.
	Mode OverlapMode
}

// ValidateP checks that p lies in [0, 1].
func ValidateP(p float64) error {
	if !(p >= 0 && p <= 1) {
		return apperrors.ValidationError(fmt.Sprintf("p must be between 0 and 1, got %g", p)).
			WithDetail("field", "p")
	}
	return nil
}

// Compute validates p and both lists, then evaluates all three estimators.
// On error no partial result is returned.
func Compute[T comparable](l1, l2 List[T], p float64, opts Options) (Result, error) {
	if err := ValidateP(p); err != nil {
		return Result{}, err
	}
	if err := l1.Validate(); err != nil {
		return Result{}, fmt.Errorf("left list: %w", err)
	}
	if err := l2.Validate(); err != nil {
		return Result{}, fmt.Errorf("right list: %w", err)
	}

	prof := NewProfile(l1, l2, opts.Mode)

	lo, err := prof.Min(p, 0)
	if err != nil {
		return Result{}, err
	}
	res, err := prof.Res(p)
	if err != nil {
		return Result{}, err
	}
	ext, err := prof.Ext(p)
	if err != nil {
		return Result{}, err
	}
	return Result{Min: lo, Res: res, Ext: ext}, nil
}

// RBO compares l1 and l2 with tie-corrected overlap.
func RBO[T comparable](l1, l2 List[T], p float64) (Result, error) {
	return Compute(l1, l2, p, Options{})
}
