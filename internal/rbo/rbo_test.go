package rbo

import (
	"math"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// chars builds a tie-free list with one rank per character.
func chars(s string) List[string] {
	return Atoms(strings.Split(s, "")...)
}

// tied is a,{b,c},d,e and shuffled is b,a,c,d.
var (
	tied     = List[string]{Atom("a"), Tie("b", "c"), Atom("d"), Atom("e")}
	shuffled = chars("bacd")
)

func TestCompute_ReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		l1   List[string]
		l2   List[string]
		p    float64
		mode OverlapMode
		want Result
	}{
		{"identical", chars("abcdefg"), chars("abcdefg"), 0.9, OverlapCorrected,
			Result{Min: 0.767139, Res: 0.232861, Ext: 1.0}},
		{"first two swapped", chars("abcdefg"), chars("bacdefg"), 0.9, OverlapCorrected,
			Result{Min: 0.667139, Res: 0.232861, Ext: 0.9}},
		{"longer first", chars("abcdefgh"), chars("abcdefg"), 0.9, OverlapCorrected,
			Result{Min: 0.767139, Res: 0.248984, Ext: 0.977679}},
		{"much longer second", chars("abcdefg"), chars("abcdefghijklmnopqrstuvwxyz"), 0.9, OverlapCorrected,
			Result{Min: 0.767139, Res: 0.239276, Ext: 1.047773}},
		{"disjoint", chars("abcdefg"), chars("hijklmn"), 0.9, OverlapCorrected,
			Result{Min: 0, Res: 0.386101, Ext: 0}},
		{"identical with tie", List[string]{Atom("a"), Tie("b", "c"), Atom("d")},
			List[string]{Atom("a"), Tie("c", "b"), Atom("d")}, 0.9, OverlapCorrected,
			Result{Min: 0.522528, Res: 0.477472, Ext: 1.0}},
		{"tie against atoms", tied, shuffled, 0.9, OverlapCorrected,
			Result{Min: 0.439536, Res: 0.430082, Ext: 0.789429}},
		{"tie against atoms raw", tied, shuffled, 0.9, OverlapRaw,
			Result{Min: 0.506371, Res: 0.393629, Ext: 0.9}},
		{"reversed tail", chars("abcdefghij"), chars("cbajihgfed"), 0.8, OverlapCorrected,
			Result{Min: 0.561214, Res: 0.030966, Ext: 0.592180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.l1, tt.l2, tt.p, Options{Mode: tt.mode})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if !approxEqual(got.Min, tt.want.Min, 1e-5) {
				t.Errorf("Min = %f, want %f", got.Min, tt.want.Min)
			}
			if !approxEqual(got.Res, tt.want.Res, 1e-5) {
				t.Errorf("Res = %f, want %f", got.Res, tt.want.Res)
			}
			if !approxEqual(got.Ext, tt.want.Ext, 1e-5) {
				t.Errorf("Ext = %f, want %f", got.Ext, tt.want.Ext)
			}
		})
	}
}

func TestCompute_IdenticalListsPartitionMass(t *testing.T) {
	lists := []List[string]{
		chars("a"),
		chars("abc"),
		chars("abcdefghijklmnop"),
		{Atom("x"), Tie("y", "z"), Atom("w")},
		{Tie("p", "q", "r"), Tie("s", "t")},
	}
	for _, l := range lists {
		for _, p := range []float64{0.1, 0.5, 0.9, 0.98} {
			got, err := RBO(l, l, p)
			if err != nil {
				t.Fatalf("RBO(%v, p=%g) error = %v", l, p, err)
			}
			if !approxEqual(got.Min+got.Res, 1, 1e-9) {
				t.Errorf("len %d p=%g: Min+Res = %f, want 1", len(l), p, got.Min+got.Res)
			}
			if !approxEqual(got.Ext, 1, 1e-9) {
				t.Errorf("len %d p=%g: Ext = %f, want 1", len(l), p, got.Ext)
			}
		}
	}
}

func TestCompute_PValidation(t *testing.T) {
	l := chars("abc")
	for _, p := range []float64{1.5, -0.1, math.NaN(), math.Inf(1)} {
		_, err := RBO(l, l, p)
		if !apperrors.IsValidation(err) {
			t.Errorf("RBO(p=%g) error = %v, want validation error", p, err)
		}
	}
}

func TestCompute_BoundaryP(t *testing.T) {
	l := chars("abc")
	for _, p := range []float64{0, 1} {
		got, err := RBO(l, l, p)
		if !apperrors.IsArithmetic(err) {
			t.Errorf("RBO(p=%g) error = %v, want arithmetic error", p, err)
		}
		if got != (Result{}) {
			t.Errorf("RBO(p=%g) = %+v, want zero result on error", p, got)
		}
	}
}

func TestCompute_MalformedLists(t *testing.T) {
	tests := []struct {
		name string
		l1   List[string]
	}{
		{"repeated atom", chars("abca")},
		{"item in atom and tie", List[string]{Atom("a"), Tie("b", "a")}},
		{"item in two ties", List[string]{Tie("a", "b"), Tie("c", "b")}},
		{"empty tie", List[string]{Atom("a"), Tie[string]()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RBO(tt.l1, chars("abc"), 0.9)
			if !apperrors.IsInvalidInput(err) {
				t.Errorf("RBO() error = %v, want invalid input error", err)
			}
		})
	}
}

func TestCompute_RepeatWithinTie(t *testing.T) {
	repeated := List[string]{Atom("a"), Tie("b", "c", "b"), Atom("d")}
	if err := repeated.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := repeated[1].Items(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Tie(b, c, b).Items() = %v, want [b c]", got)
	}

	other := chars("acbd")
	got, err := RBO(repeated, other, 0.9)
	if err != nil {
		t.Fatalf("RBO() error = %v", err)
	}
	want, err := RBO(List[string]{Atom("a"), Tie("b", "c"), Atom("d")}, other, 0.9)
	if err != nil {
		t.Fatalf("RBO() error = %v", err)
	}
	if got != want {
		t.Errorf("RBO(repeated tie) = %+v, want %+v", got, want)
	}
}

func TestCompute_EmptyList(t *testing.T) {
	_, err := RBO(chars("abc"), List[string]{}, 0.9)
	if !apperrors.IsArithmetic(err) {
		t.Errorf("RBO(empty) error = %v, want arithmetic error", err)
	}
}

func TestMin(t *testing.T) {
	got, err := Min(chars("abcdefg"), chars("abcdefg"), 0.9, 0)
	if err != nil {
		t.Fatalf("Min() error = %v", err)
	}
	if !approxEqual(got, 0.767, 0.001) {
		t.Errorf("Min() = %f, want 0.767", got)
	}

	l := List[string]{Atom("a"), Tie("b", "c"), Atom("d")}
	got, err = Min(l, l, 0.9, 3)
	if err != nil {
		t.Fatalf("Min(depth=3) error = %v", err)
	}
	if !approxEqual(got, 0.522528, 1e-5) {
		t.Errorf("Min(depth=3) = %f, want 0.522528", got)
	}
}

func TestRes(t *testing.T) {
	tests := []struct {
		l1, l2 string
		want   float64
	}{
		{"abcdefg", "abcdefg", 0.233},
		{"abcdefg", "abcdefghijklmnopqrstuvwxyz", 0.239},
	}
	for _, tt := range tests {
		got, err := Res(chars(tt.l1), chars(tt.l2), 0.9)
		if err != nil {
			t.Fatalf("Res(%s, %s) error = %v", tt.l1, tt.l2, err)
		}
		if !approxEqual(got, tt.want, 0.001) {
			t.Errorf("Res(%s, %s) = %f, want %f", tt.l1, tt.l2, got, tt.want)
		}
	}
}

func TestRes_OneEmptyList(t *testing.T) {
	got, err := Res(chars("abc"), List[string]{}, 0.9)
	if err != nil {
		t.Fatalf("Res() error = %v", err)
	}
	if !approxEqual(got, 1, 1e-9) {
		t.Errorf("Res() = %f, want 1", got)
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		l1, l2 string
		want   float64
	}{
		{"abcdefg", "abcdefg", 1.000},
		{"abcdefg", "bacdefg", 0.900},
	}
	for _, tt := range tests {
		got, err := Ext(chars(tt.l1), chars(tt.l2), 0.9)
		if err != nil {
			t.Fatalf("Ext(%s, %s) error = %v", tt.l1, tt.l2, err)
		}
		if !approxEqual(got, tt.want, 0.001) {
			t.Errorf("Ext(%s, %s) = %f, want %f", tt.l1, tt.l2, got, tt.want)
		}
	}
}

func TestExt_PEqualsOne(t *testing.T) {
	// The (1-p)/p prefactor vanishes, leaving the terminal agreement.
	got, err := Ext(chars("abcdefg"), chars("bacdefg"), 1)
	if err != nil {
		t.Fatalf("Ext(p=1) error = %v", err)
	}
	if !approxEqual(got, 1, 1e-9) {
		t.Errorf("Ext(p=1) = %f, want 1", got)
	}
}

func TestEstimators_BoundaryErrors(t *testing.T) {
	l := chars("abc")
	tests := []struct {
		name string
		fn   func() (float64, error)
	}{
		{"min p=0", func() (float64, error) { return Min(l, l, 0, 0) }},
		{"min p=1", func() (float64, error) { return Min(l, l, 1, 0) }},
		{"res p=0", func() (float64, error) { return Res(l, l, 0) }},
		{"res p=1", func() (float64, error) { return Res(l, l, 1) }},
		{"ext p=0", func() (float64, error) { return Ext(l, l, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !apperrors.IsArithmetic(err) {
				t.Errorf("error = %v, want arithmetic error", err)
			}
		})
	}
}

func TestEstimators_Bounds(t *testing.T) {
	pairs := [][2]List[string]{
		{chars("abcdefg"), chars("bacdefg")},
		{chars("abcdefghij"), chars("cbajihgfed")},
		{tied, shuffled},
		{chars("abcd"), chars("dcbaxyz")},
	}
	for _, pair := range pairs {
		got, err := RBO(pair[0], pair[1], 0.9)
		if err != nil {
			t.Fatalf("RBO() error = %v", err)
		}
		if got.Min < 0 || got.Res < 0 || got.Min+got.Res > 1+1e-9 {
			t.Errorf("bounds out of range: %+v", got)
		}
		if got.Ext < got.Min-1e-9 || got.Ext > got.Min+got.Res+1e-9 {
			t.Errorf("Ext %f not within [Min, Min+Res] = [%f, %f]", got.Ext, got.Min, got.Min+got.Res)
		}
	}
}
