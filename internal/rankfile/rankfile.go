// Package rankfile reads and writes ranked lists, score mappings and batch
// documents as YAML or JSON.
//
// A ranked list is a sequence whose elements are either a scalar (one item
// at that rank) or a sequence of scalars (a tie-set):
//
//	[a, [b, c], d]
//
// A score mapping maps items to numbers:
//
//	{a: 3, b: 1, c: 3}
package rankfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
	"github.com/ricesearch/rbo/internal/rbo"
)

const nullTag = "!!null"

// Entry is a rank entry with YAML and JSON encodings.
type Entry struct {
	rbo.Entry[string]
}

// UnmarshalYAML decodes a scalar as an atom and a sequence as a tie-set.
func (e *Entry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == nullTag {
			return fmt.Errorf("line %d: null rank entry", n.Line)
		}
		e.Entry = rbo.Atom(n.Value)
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode || c.ShortTag() == nullTag {
				return fmt.Errorf("line %d: tie-set members must be scalars", c.Line)
			}
			items = append(items, c.Value)
		}
		if len(items) == 0 {
			return fmt.Errorf("line %d: empty tie-set", n.Line)
		}
		e.Entry = rbo.Tie(items...)
		return nil
	default:
		return fmt.Errorf("line %d: rank entry must be a scalar or a sequence", n.Line)
	}
}

// MarshalYAML encodes an atom as a scalar and a tie-set as a sequence.
func (e Entry) MarshalYAML() (any, error) {
	if e.Len() == 0 {
		return nil, nil
	}
	if e.IsTie() {
		return e.Items(), nil
	}
	return e.Items()[0], nil
}

// UnmarshalJSON accepts strings, numbers, or arrays of them.
func (e *Entry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	if s, ok := scalarString(raw); ok {
		e.Entry = rbo.Atom(s)
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("rank entry must be a string, number, or array, got %s", data)
	}
	if len(arr) == 0 {
		return fmt.Errorf("empty tie-set")
	}
	items := make([]string, len(arr))
	for i, v := range arr {
		s, ok := scalarString(v)
		if !ok {
			return fmt.Errorf("tie-set members must be strings or numbers, got %v", v)
		}
		items[i] = s
	}
	e.Entry = rbo.Tie(items...)
	return nil
}

// MarshalJSON encodes an atom as a string and a tie-set as an array.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Len() == 0 {
		return []byte("null"), nil
	}
	if e.IsTie() {
		return json.Marshal(e.Items())
	}
	return json.Marshal(e.Items()[0])
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

// List is a ranked list of string items.
type List []Entry

// UnmarshalYAML decodes each element of a sequence as an Entry. Null
// elements are rejected here since yaml.v3 skips unmarshalers for them.
func (l *List) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: ranked list must be a sequence", n.Line)
	}
	out := make(List, len(n.Content))
	for i, c := range n.Content {
		if c.ShortTag() == nullTag {
			return apperrors.InvalidInputError(
				fmt.Sprintf("line %d: rank %d is null", c.Line, i+1))
		}
		if err := out[i].UnmarshalYAML(c); err != nil {
			return err
		}
	}
	*l = out
	return nil
}

// Ranked converts l for computation.
func (l List) Ranked() rbo.List[string] {
	out := make(rbo.List[string], len(l))
	for i, e := range l {
		out[i] = e.Entry
	}
	return out
}

// FromRanked wraps a computed list for encoding.
func FromRanked(l rbo.List[string]) List {
	out := make(List, len(l))
	for i, e := range l {
		out[i] = Entry{e}
	}
	return out
}

// Scores maps items to scores.
type Scores map[string]float64

// Decode reads one YAML or JSON document from r into v.
func Decode(r io.Reader, v any) error {
	if err := yaml.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInputError("empty document")
		}
		return apperrors.Wrap(apperrors.CodeInvalidInput, "decoding document", err)
	}
	return nil
}

// ReadFile decodes the file at path into v. A path of "-" reads stdin.
func ReadFile(path string, v any) error {
	if path == "-" {
		return Decode(os.Stdin, v)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := Decode(f, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadList reads a ranked list from path.
func ReadList(path string) (rbo.List[string], error) {
	var l List
	if err := ReadFile(path, &l); err != nil {
		return nil, err
	}
	return l.Ranked(), nil
}

// ReadScores reads a score mapping from path.
func ReadScores(path string) (Scores, error) {
	var s Scores
	if err := ReadFile(path, &s); err != nil {
		return nil, err
	}
	return s, nil
}
