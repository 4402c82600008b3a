package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/clarity"
	cfg "github.com/maastricht-university/meeting-clarity/config"
	"github.com/maastricht-university/meeting-clarity/jargon"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/observe"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

// Pipeline runs recording -> transcript -> jargon report -> score -> store.
type Pipeline struct {
	cfg       *cfg.Root
	asr       Transcriber
	extractor jargon.Extractor
	validator *clarity.Validator
	scorer    *clarity.Scorer
	store     Saver
	ids       *meeting.IDs
	metrics   *observe.Metrics
	now       func() time.Time
}

// NewPipeline wires a Pipeline. store and metrics may be nil.
func NewPipeline(c *cfg.Root, asr Transcriber, ex jargon.Extractor, store Saver, m *observe.Metrics) (*Pipeline, error) {
	ids, err := meeting.NewIDs(c.Pipeline.Node)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       c,
		asr:       asr,
		extractor: ex,
		validator: c.Scoring.Validator(),
		scorer:    clarity.NewScorer(c.Scoring.TopN),
		store:     store,
		ids:       ids,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// Run analyzes one recording.
func (p *Pipeline) Run(ctx context.Context, req Request) (a *meeting.Analysis, err error) {
	defer func() { p.metrics.RecordAnalysis(ctx, err) }()

	if req.MediaPath == "" {
		return nil, errors.New("pipeline: media path is empty")
	}
	entry := log.WithFields(log.Fields{"media": req.MediaPath, "owner": req.Owner})

	start := time.Now()
	asr, err := p.asr.Transcribe(ctx, req.MediaPath)
	p.metrics.RecordStage(ctx, observe.StageASR, start)
	if err != nil {
		return nil, err
	}
	utts := asr.Transcript()
	entry.WithField("utterances", len(utts)).Debug("transcribed")

	a = &meeting.Analysis{
		ID:          p.ids.Next(),
		Owner:       req.Owner,
		Label:       label(req),
		CreatedAt:   p.now().UTC(),
		DurationSec: duration(asr.Duration, utts),
		TotalWords:  transcript.WordCount(utts),
		Transcript:  utts,
	}

	report, err := p.extract(ctx, utts, a.TotalWords)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	res, err := p.scorer.Score(report, a.TotalWords)
	p.metrics.RecordStage(ctx, observe.StageScore, start)
	if err != nil {
		return nil, err
	}
	a.Fill(report, res)

	start = time.Now()
	err = p.persist(ctx, a)
	p.metrics.RecordStage(ctx, observe.StagePersist, start)
	if err != nil {
		return nil, err
	}

	p.metrics.RecordIndex(ctx, a.ClarityIndex)
	entry.WithFields(log.Fields{
		"meeting_id":    a.ID,
		"clarity_index": a.ClarityIndex,
		"total_words":   a.TotalWords,
	}).Info("meeting analyzed")
	return a, nil
}

// extract skips the language model when nobody said anything.
func (p *Pipeline) extract(ctx context.Context, utts []transcript.Utterance, words int) (*clarity.Report, error) {
	if words == 0 {
		return &clarity.Report{IdentifiedJargon: []clarity.JargonOccurrence{}, OverallClaritySummary: noSpeech}, nil
	}
	start := time.Now()
	report, err := p.extractor.Extract(ctx, utts)
	p.metrics.RecordStage(ctx, observe.StageExtract, start)
	if errors.Is(err, clarity.ErrMalformedReport) {
		p.metrics.RecordValidationFailure(ctx, "malformed_report")
	}
	return report, err
}

// ScoreReport validates a raw report and scores it against totalWords,
// which may be any JSON-decoded number or numeric string.
func (p *Pipeline) ScoreReport(ctx context.Context, raw []byte, totalWords any) (*clarity.Report, *clarity.Result, error) {
	words, err := clarity.ParseWordCount(totalWords)
	if err != nil {
		p.metrics.RecordValidationFailure(ctx, "word_count")
		return nil, nil, err
	}
	report, err := p.validator.Parse(raw)
	if err != nil {
		p.metrics.RecordValidationFailure(ctx, "malformed_report")
		return nil, nil, err
	}
	res, err := p.scorer.Score(report, words)
	if err != nil {
		return nil, nil, fmt.Errorf("score: %w", err)
	}
	return report, res, nil
}
