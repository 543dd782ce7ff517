package rankfile

import (
	"fmt"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
	"github.com/ricesearch/rbo/internal/rbo"
)

// Document is a batch of comparisons sharing one p and overlap mode.
type Document struct {
	P     *float64 `yaml:"p,omitempty" json:"p,omitempty"`
	Mode  string   `yaml:"mode,omitempty" json:"mode,omitempty"`
	Pairs []Pair   `yaml:"pairs" json:"pairs"`
}

// Pair is one comparison, given either as two ranked lists or as two score
// mappings.
type Pair struct {
	ID          string `yaml:"id" json:"id"`
	Left        List   `yaml:"left,omitempty" json:"left,omitempty"`
	Right       List   `yaml:"right,omitempty" json:"right,omitempty"`
	LeftScores  Scores `yaml:"left_scores,omitempty" json:"left_scores,omitempty"`
	RightScores Scores `yaml:"right_scores,omitempty" json:"right_scores,omitempty"`
}

// Lists returns the pair's ranked lists, ranking score mappings when the pair
// is given as scores.
func (p Pair) Lists() (rbo.List[string], rbo.List[string], error) {
	hasLists := p.Left != nil || p.Right != nil
	hasScores := p.LeftScores != nil || p.RightScores != nil
	switch {
	case hasLists && hasScores:
		return nil, nil, apperrors.InvalidInputError("pair mixes ranked lists and score mappings")
	case hasScores:
		l1, err := rbo.SortScores(map[string]float64(p.LeftScores))
		if err != nil {
			return nil, nil, fmt.Errorf("left scores: %w", err)
		}
		l2, err := rbo.SortScores(map[string]float64(p.RightScores))
		if err != nil {
			return nil, nil, fmt.Errorf("right scores: %w", err)
		}
		return l1, l2, nil
	default:
		return p.Left.Ranked(), p.Right.Ranked(), nil
	}
}

// ReadDocument reads a batch document from path and assigns IDs to pairs
// that have none.
func ReadDocument(path string) (*Document, error) {
	var doc Document
	if err := ReadFile(path, &doc); err != nil {
		return nil, err
	}
	doc.FillIDs()
	return &doc, nil
}

// FillIDs names unnamed pairs "pair-N" after their 1-based position.
func (d *Document) FillIDs() {
	for i := range d.Pairs {
		if d.Pairs[i].ID == "" {
			d.Pairs[i].ID = fmt.Sprintf("pair-%d", i+1)
		}
	}
}
