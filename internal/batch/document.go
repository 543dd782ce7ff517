package batch

import (
	"github.com/ricesearch/rbo/internal/rankfile"
	"github.com/ricesearch/rbo/internal/rbo"
)

// ConfigFor applies a document's p and mode on top of defaults.
func ConfigFor(doc *rankfile.Document, defaults Config) (Config, error) {
	cfg := defaults
	if doc.P != nil {
		if err := rbo.ValidateP(*doc.P); err != nil {
			return Config{}, err
		}
		cfg.P = *doc.P
	}
	if doc.Mode != "" {
		mode, err := rbo.ParseOverlapMode(doc.Mode)
		if err != nil {
			return Config{}, err
		}
		cfg.Mode = mode
	}
	return cfg, nil
}

// FromDocument converts a document's pairs. A pair that cannot be turned
// into ranked lists carries the failure in Err.
func FromDocument(doc *rankfile.Document) []Pair {
	pairs := make([]Pair, 0, len(doc.Pairs))
	for _, dp := range doc.Pairs {
		left, right, err := dp.Lists()
		pairs = append(pairs, Pair{ID: dp.ID, Left: left, Right: right, Err: err})
	}
	return pairs
}
