// Package clients talks to the remote collaborators of the pipeline: the
// speech-to-text service and the language models behind the jargon
// extractor.
package clients

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds one remote call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return NewHTTPWithTimeout(DefaultTimeout) }

// NewHTTPWithTimeout builds a client whose requests give up after d.
func NewHTTPWithTimeout(d time.Duration) *HTTP {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &HTTP{c: &http.Client{Timeout: d}}
}
