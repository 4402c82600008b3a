// Package vocab loads the master jargon vocabulary the extractor is
// constrained to. A Vocabulary is immutable once loaded.
package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CSV column names of the curated master list.
const (
	TermColumn    = "Jargon_Term"
	MeaningColumn = "Jargon_Meaning"
)

// ErrEmpty is returned when a source yields no usable terms.
var ErrEmpty = errors.New("vocabulary is empty")

// Term is one master-list entry.
type Term struct {
	Term    string `yaml:"term"`
	Meaning string `yaml:"meaning"`
}

// Vocabulary is the snapshot of terms shared by the extractor and the
// reports it produces.
type Vocabulary struct {
	terms  []Term
	index  map[string]struct{}
	folded map[string]string
}

// New builds a Vocabulary from terms, skipping blank and duplicate entries.
func New(terms []Term) (*Vocabulary, error) {
	v := &Vocabulary{
		index:  make(map[string]struct{}, len(terms)),
		folded: make(map[string]string, len(terms)),
	}
	for _, t := range terms {
		t.Term = strings.TrimSpace(t.Term)
		t.Meaning = strings.TrimSpace(t.Meaning)
		if t.Term == "" {
			continue
		}
		if _, dup := v.index[t.Term]; dup {
			continue
		}
		v.index[t.Term] = struct{}{}
		if _, seen := v.folded[strings.ToLower(t.Term)]; !seen {
			v.folded[strings.ToLower(t.Term)] = t.Term
		}
		v.terms = append(v.terms, t)
	}
	if len(v.terms) == 0 {
		return nil, ErrEmpty
	}
	return v, nil
}

// Load reads a vocabulary file; .yaml/.yml files are a list of
// {term, meaning}, anything else is read as CSV.
func Load(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %q: %w", path, err)
	}
	defer f.Close()

	var v *Vocabulary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v, err = FromYAML(f)
	default:
		v, err = FromCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("vocab: load %q: %w", path, err)
	}
	return v, nil
}

// FromCSV reads a CSV with a header row containing TermColumn and,
// optionally, MeaningColumn.
func FromCSV(r io.Reader) (*Vocabulary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	termCol, meaningCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case TermColumn:
			termCol = i
		case MeaningColumn:
			meaningCol = i
		}
	}
	if termCol < 0 {
		return nil, fmt.Errorf("missing %q column", TermColumn)
	}

	var terms []Term
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if termCol >= len(rec) {
			continue
		}
		t := Term{Term: rec[termCol]}
		if meaningCol >= 0 && meaningCol < len(rec) {
			t.Meaning = rec[meaningCol]
		}
		terms = append(terms, t)
	}
	return New(terms)
}

// FromYAML reads a YAML list of terms.
func FromYAML(r io.Reader) (*Vocabulary, error) {
	var terms []Term
	if err := yaml.NewDecoder(r).Decode(&terms); err != nil {
		if err == io.EOF {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return New(terms)
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms returns a copy of the terms in file order.
func (v *Vocabulary) Terms() []Term {
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Contains reports whether term is spelled exactly as a master-list entry.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.index[term]
	return ok
}

// Canonical returns the master-list spelling of term, matching
// case-insensitively when there is no exact entry.
func (v *Vocabulary) Canonical(term string) (string, bool) {
	if v.Contains(term) {
		return term, true
	}
	c, ok := v.folded[strings.ToLower(strings.TrimSpace(term))]
	return c, ok
}
