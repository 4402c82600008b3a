package orchestrator_test

import (
	"context"
	"sync"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/clients"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/orchestrator"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

type fakeASR struct {
	resp *clients.ASRResp
	err  error
}

func (f *fakeASR) Transcribe(context.Context, string) (*clients.ASRResp, error) {
	return f.resp, f.err
}

type fakeExtractor struct {
	report *clarity.Report
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(context.Context, []transcript.Utterance) (*clarity.Report, error) {
	f.calls++
	return f.report, f.err
}

type recordingAnalyzer struct {
	mu   sync.Mutex
	reqs []orchestrator.Request
	fail map[string]error
}

func (r *recordingAnalyzer) Run(_ context.Context, req orchestrator.Request) (*meeting.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	if err := r.fail[req.MediaPath]; err != nil {
		return nil, err
	}
	return &meeting.Analysis{ID: "id-" + req.MediaPath, Label: req.Label, ClarityIndex: 90}, nil
}

func (r *recordingAnalyzer) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.reqs))
	for _, q := range r.reqs {
		out = append(out, q.MediaPath)
	}
	return out
}
