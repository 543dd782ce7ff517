package rbo

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

// SortScores ranks the keys of scores by descending score. Keys with exactly
// equal scores share one rank as a tie-set. Keys are visited in ascending
// order, so tie-set members come out sorted.
func SortScores[T cmp.Ordered](scores map[T]float64) (List[T], error) {
	// Parallel slices: negated scores ascending, and the entry for each.
	var (
		neg     []float64
		entries List[T]
	)
	for _, item := range slices.Sorted(maps.Keys(scores)) {
		score := scores[item]
		if math.IsNaN(score) {
			return nil, apperrors.InvalidInputError(fmt.Sprintf("score of %v is NaN", item))
		}
		s := -score
		i := sort.SearchFloat64s(neg, s)
		switch {
		case i == len(neg):
			neg = append(neg, s)
			entries = append(entries, Atom(item))
		case neg[i] == s:
			e := entries[i]
			entries[i] = Entry[T]{items: append(e.items, item), tie: true}
		default:
			neg = slices.Insert(neg, i, s)
			entries = slices.Insert(entries, i, Atom(item))
		}
	}
	return entries, nil
}

// CompareScores ranks both score mappings with SortScores and compares the
// resulting lists.
func CompareScores[T cmp.Ordered](scores1, scores2 map[T]float64, p float64, opts Options) (Result, error) {
	if err := ValidateP(p); err != nil {
		return Result{}, err
	}
	l1, err := SortScores(scores1)
	if err != nil {
		return Result{}, fmt.Errorf("left scores: %w", err)
	}
	l2, err := SortScores(scores2)
	if err != nil {
		return Result{}, fmt.Errorf("right scores: %w", err)
	}
	return Compute(l1, l2, p, opts)
}
