// Package rbo computes Rank-Biased Overlap (RBO) between ranked lists.
//
// Lists may be of different lengths, may be truncated prefixes of longer
// rankings, and may contain tie-sets: several items sharing one rank. Three
// estimators are provided: a lower bound on RBO given the observed prefixes
// (Min), an upper bound on the contribution of the unseen tail (Res), and a
// point estimate that extrapolates the observed agreement (Ext).
//
// All functions are pure. Nothing is cached between calls.
package rbo

import (
	"fmt"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

// Entry is one rank of a ranked list: either a single item or a tie-set.
type Entry[T comparable] struct {
	items []T
	tie   bool
}

// Atom returns an entry holding a single item.
func Atom[T comparable](v T) Entry[T] {
	return Entry[T]{items: []T{v}}
}

// Tie returns an entry holding items that share one rank. A tie-set is a
// set: repeated items are kept once, in order of first appearance.
func Tie[T comparable](vs ...T) Entry[T] {
	items := make([]T, 0, len(vs))
	seen := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		items = append(items, v)
	}
	return Entry[T]{items: items, tie: true}
}

// IsTie reports whether the entry was built as a tie-set.
func (e Entry[T]) IsTie() bool {
	return e.tie
}

// Items returns a copy of the entry's items.
func (e Entry[T]) Items() []T {
	out := make([]T, len(e.items))
	copy(out, e.items)
	return out
}

// Len returns the number of items at this rank.
func (e Entry[T]) Len() int {
	return len(e.items)
}

// List is a ranked list, most preferred entry first.
type List[T comparable] []Entry[T]

// Atoms builds a list without ties, one item per rank.
func Atoms[T comparable](vs ...T) List[T] {
	l := make(List[T], len(vs))
	for i, v := range vs {
		l[i] = Atom(v)
	}
	return l
}

// Validate rejects lists in which an item occupies more than one rank or a
// rank holds no items. An item repeated within one tie-set is not an error.
func (l List[T]) Validate() error {
	seen := make(map[T]int)
	for i, e := range l {
		rank := i + 1
		if len(e.items) == 0 {
			return apperrors.InvalidInputError(fmt.Sprintf("rank %d is empty", rank)).
				WithDetail("rank", fmt.Sprint(rank))
		}
		for _, v := range e.items {
			if prev, ok := seen[v]; ok && prev != rank {
				return apperrors.InvalidInputError(
					fmt.Sprintf("item %v appears at rank %d and rank %d", v, prev, rank)).
					WithDetail("rank", fmt.Sprint(rank))
			}
			seen[v] = rank
		}
	}
	return nil
}

// DepthSet returns the distinct items in the first depth entries of l,
// flattening tie-sets. A depth beyond the list's length stops at its end.
func DepthSet[T comparable](l List[T], depth int) map[T]struct{} {
	set := make(map[T]struct{})
	for i := 0; i < depth && i < len(l); i++ {
		for _, v := range l[i].items {
			set[v] = struct{}{}
		}
	}
	return set
}
