package orchestrator

import (
	"context"

	"github.com/maastricht-university/meeting-clarity/clients"
	"github.com/maastricht-university/meeting-clarity/meeting"
)

// Request asks for one recording to be analyzed.
type Request struct {
	MediaPath string
	Owner     string
	// Label defaults to the file name.
	Label string
}

// Transcriber turns a recording into diarized utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*clients.ASRResp, error)
}

// Saver persists finished analyses.
type Saver interface {
	Save(ctx context.Context, a *meeting.Analysis) error
}

// Analyzer is what the watcher and the HTTP surface need from a Pipeline.
type Analyzer interface {
	Run(ctx context.Context, req Request) (*meeting.Analysis, error)
}
