package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

const (
	analysisFile   = "analysis.json"
	transcriptFile = "transcript.txt"
)

func mkMeetingDir(outputsRoot, id string) (string, error) {
	dir := filepath.Join(outputsRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// persist writes the analysis bundle under paths.outputs/<id>/ and saves the
// row in the store.
func (p *Pipeline) persist(ctx context.Context, a *meeting.Analysis) error {
	if p.cfg.Paths.Outputs != "" {
		dir, err := mkMeetingDir(p.cfg.Paths.Outputs, a.ID)
		if err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		if err := writeJSON(filepath.Join(dir, analysisFile), a); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		if err := transcript.WriteText(filepath.Join(dir, transcriptFile), a.Transcript); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	if p.store != nil {
		if err := p.store.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
