// Package transcript holds the diarized utterances produced by the ASR
// service and the text views derived from them.
package transcript

import (
	"fmt"
	"strings"
)

// Utterance is one speaker turn. Start and End are in seconds.
type Utterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Text joins all utterance texts with single spaces.
func Text(utts []Utterance) string {
	parts := make([]string, 0, len(utts))
	for _, u := range utts {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}

// WordCount counts whitespace-separated tokens of the joined transcript.
func WordCount(utts []Utterance) int {
	return len(strings.Fields(Text(utts)))
}

// Duration is the end of the last utterance, in seconds.
func Duration(utts []Utterance) float64 {
	var end float64
	for _, u := range utts {
		if u.End > end {
			end = u.End
		}
	}
	return end
}

// Line renders u the way the extractor sees it: "Speaker A [1.2s]: text".
func Line(u Utterance) string {
	return fmt.Sprintf("Speaker %s [%.1fs]: %s\n", u.Speaker, u.Start, u.Text)
}

// FormatLimited renders utterances until the next line would push the text
// past maxChars. maxChars <= 0 means no limit.
func FormatLimited(utts []Utterance, maxChars int) string {
	var b strings.Builder
	for _, u := range utts {
		line := Line(u)
		if maxChars > 0 && b.Len()+len(line) > maxChars {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
