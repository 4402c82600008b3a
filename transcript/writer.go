package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteText writes one "[HH:MM:SS] Speaker A: text" line per utterance. The
// file is written atomically (temp file + rename).
func WriteText(path string, utts []Utterance) error {
	var b strings.Builder
	for _, u := range utts {
		fmt.Fprintf(&b, "[%s] Speaker %s: %s\n", formatTimestamp(u.Start), u.Speaker, u.Text)
	}
	return atomicWrite(path, []byte(b.String()))
}

func formatTimestamp(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "transcript-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing transcript: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming transcript: %w", err)
	}
	committed = true
	return nil
}
