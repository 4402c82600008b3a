package clarity

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrMalformedReport marks every report validation failure.
	ErrMalformedReport = errors.New("malformed clarity report")

	// ErrInvalidWordCount is returned for negative or non-integer word counts.
	ErrInvalidWordCount = errors.New("invalid word count")
)

// MalformedReportError describes why a raw report was rejected.
type MalformedReportError struct {
	// Field is the JSON path of the offending value, e.g. "identified_jargon[2].frequency".
	// Empty when the payload could not be decoded at all.
	Field   string
	Reason  string
	Excerpt string
}

func (e *MalformedReportError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedReport, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedReport, e.Field, e.Reason)
}

func (e *MalformedReportError) Unwrap() error { return ErrMalformedReport }

// excerpt returns at most n bytes of raw, cut back to a rune boundary, with
// invalid sequences replaced by U+FFFD.
func excerpt(raw []byte, n int) string {
	if n <= 0 || len(raw) == 0 {
		return ""
	}
	if len(raw) <= n {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	for n > 0 && !utf8.RuneStart(raw[n]) {
		n--
	}
	return strings.ToValidUTF8(string(raw[:n]), "\uFFFD") + "..."
}
