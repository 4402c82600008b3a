// Package jargon asks a language model which master-list terms each speaker
// used and turns the answer into a validated clarity.Report.
package jargon

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/clients"
	"github.com/maastricht-university/meeting-clarity/transcript"
	"github.com/maastricht-university/meeting-clarity/vocab"
)

const schemaName = "clarity_report"

// Extractor produces a jargon report for a transcript.
type Extractor interface {
	Extract(ctx context.Context, utts []transcript.Utterance) (*clarity.Report, error)
}

// Options tunes an LLMExtractor.
type Options struct {
	// MaxTranscriptChars truncates the prompt transcript at a line boundary;
	// 0 sends everything.
	MaxTranscriptChars int
	MaxTokens          int
	Temperature        *float64
}

// LLMExtractor implements Extractor over a clients.Completer.
type LLMExtractor struct {
	llm       clients.Completer
	vocab     *vocab.Vocabulary
	validator *clarity.Validator
	opts      Options
	system    string
}

var _ Extractor = (*LLMExtractor)(nil)

func NewLLMExtractor(llm clients.Completer, v *vocab.Vocabulary, val *clarity.Validator, opts Options) (*LLMExtractor, error) {
	if llm == nil {
		return nil, errors.New("jargon: no language model configured")
	}
	if v == nil || v.Len() == 0 {
		return nil, fmt.Errorf("jargon: %w", vocab.ErrEmpty)
	}
	if val == nil {
		val = clarity.NewValidator(clarity.WeightClamp)
	}
	return &LLMExtractor{llm: llm, vocab: v, validator: val, opts: opts, system: SystemPrompt(v)}, nil
}

// Extract sends the formatted transcript and validates the answer. A
// malformed answer is returned as a *clarity.MalformedReportError; occurrences
// of terms outside the vocabulary are dropped.
func (e *LLMExtractor) Extract(ctx context.Context, utts []transcript.Utterance) (*clarity.Report, error) {
	text := transcript.FormatLimited(utts, e.opts.MaxTranscriptChars)

	raw, err := e.llm.Complete(ctx, clients.CompletionRequest{
		System:      e.system,
		User:        text,
		Schema:      ReportSchema(),
		SchemaName:  schemaName,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("jargon: %s: %w", e.llm.Name(), err)
	}

	report, err := e.validator.Parse([]byte(stripFence(raw)))
	if err != nil {
		return nil, err
	}
	e.constrain(report)
	return report, nil
}

// constrain rewrites terms to their listed spelling and drops the rest.
func (e *LLMExtractor) constrain(r *clarity.Report) {
	kept := r.IdentifiedJargon[:0]
	for _, j := range r.IdentifiedJargon {
		term, ok := e.vocab.Canonical(j.Term)
		if !ok {
			log.WithFields(log.Fields{"term": j.Term, "speaker": j.Speaker}).Warn("dropping term outside the master list")
			continue
		}
		j.Term = term
		kept = append(kept, j)
	}
	r.IdentifiedJargon = kept
}
