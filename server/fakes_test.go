package server_test

import (
	"context"
	"os"
	"sync"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/orchestrator"
	"github.com/maastricht-university/meeting-clarity/store"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	req      orchestrator.Request
	uploaded []byte
	err      error
}

func (f *fakeAnalyzer) Run(_ context.Context, req orchestrator.Request) (*meeting.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req = req
	f.uploaded, _ = os.ReadFile(req.MediaPath)
	if f.err != nil {
		return nil, f.err
	}
	return &meeting.Analysis{ID: "m-1", Owner: req.Owner, Label: req.Label, ClarityIndex: 88}, nil
}

// scorer runs the real validator and scorer.
type scorer struct{}

func (scorer) ScoreReport(_ context.Context, raw []byte, totalWords any) (*clarity.Report, *clarity.Result, error) {
	words, err := clarity.ParseWordCount(totalWords)
	if err != nil {
		return nil, nil, err
	}
	r, err := clarity.NewValidator(clarity.WeightClamp).Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	res, err := clarity.NewScorer(5).Score(r, words)
	if err != nil {
		return nil, nil, err
	}
	return r, res, nil
}

type fakeMeetings struct {
	byID    map[string]*meeting.Analysis
	history map[string][]meeting.Summary
}

func (f *fakeMeetings) Get(_ context.Context, id string) (*meeting.Analysis, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeMeetings) History(_ context.Context, owner string) ([]meeting.Summary, error) {
	if h, ok := f.history[owner]; ok {
		return h, nil
	}
	return []meeting.Summary{}, nil
}
