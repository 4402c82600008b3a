package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/transcript"
)

// ASRUtterance is one diarized speaker turn as returned by the service.
type ASRUtterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

type ASRResp struct {
	Utterances []ASRUtterance `json:"utterances"`
	Duration   float64        `json:"duration"`
	Language   string         `json:"language"`
}

// Transcript converts the response into transcript utterances.
func (r *ASRResp) Transcript() []transcript.Utterance {
	out := make([]transcript.Utterance, 0, len(r.Utterances))
	for _, u := range r.Utterances {
		out = append(out, transcript.Utterance{Speaker: u.Speaker, Text: u.Text, Start: u.Start, End: u.End})
	}
	return out
}

// ASR posts a recording to a diarizing speech-to-text service.
type ASR struct {
	http        *HTTP
	url         string
	retries     int
	backoffBase time.Duration
}

// NewASR builds an ASR client for the service at url. retries < 0 is
// treated as 0.
func NewASR(h *HTTP, url string, retries int) *ASR {
	if retries < 0 {
		retries = 0
	}
	return &ASR{http: h, url: url, retries: retries, backoffBase: time.Second}
}

// WithBackoff overrides the base retry delay.
func (a *ASR) WithBackoff(d time.Duration) *ASR {
	a.backoffBase = d
	return a
}

// Transcribe uploads the file at path and returns the diarized utterances.
// Network failures and 5xx answers are retried with exponential backoff.
func (a *ASR) Transcribe(ctx context.Context, path string) (*ASRResp, error) {
	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			d := a.backoff(attempt)
			log.WithFields(log.Fields{"attempt": attempt, "backoff": d}).Warn("asr retry")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d):
			}
		}

		out, err := a.do(ctx, path)
		if err == nil {
			return out, nil
		}
		if !isRetryable(err) {
			return nil, fmt.Errorf("asr %s: %w", filepath.Base(path), err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("asr %s: %d retries exhausted: %w", filepath.Base(path), a.retries, lastErr)
}

func (a *ASR) do(ctx context.Context, path string) (*ASRResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.WriteField("speaker_labels", "true"); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.http.c.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retryableError{err: fmt.Errorf("%s: %s", resp.Status, string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: %s", resp.Status, string(body))
	}

	var out ASRResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// backoff is base * 2^(attempt-1) plus up to 25% jitter.
func (a *ASR) backoff(attempt int) time.Duration {
	delay := a.backoffBase
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)+1))
}
