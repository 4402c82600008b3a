package orchestrator

import (
	"path/filepath"
	"strings"

	"github.com/maastricht-university/meeting-clarity/transcript"
)

const noSpeech = "No speech was detected in the recording."

func label(req Request) string {
	if l := strings.TrimSpace(req.Label); l != "" {
		return l
	}
	return filepath.Base(req.MediaPath)
}

// duration prefers the service-reported length and falls back to the end of
// the last utterance.
func duration(reported float64, utts []transcript.Utterance) float64 {
	if reported > 0 {
		return reported
	}
	return transcript.Duration(utts)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
