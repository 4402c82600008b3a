package resilience

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrAllFailed is returned when every entry failed or was skipped.
var ErrAllFailed = errors.New("all backends failed")

type entry[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup holds a primary and ordered fallbacks, each behind its own
// breaker.
type FallbackGroup[T any] struct {
	entries []entry[T]
	cfg     BreakerConfig
}

func NewFallbackGroup[T any](primaryName string, primary T, cfg BreakerConfig) *FallbackGroup[T] {
	fg := &FallbackGroup[T]{cfg: cfg}
	fg.Add(primaryName, primary)
	return fg
}

// Add appends a fallback tried after every earlier entry.
func (fg *FallbackGroup[T]) Add(name string, v T) {
	c := fg.cfg
	c.Name = name
	fg.entries = append(fg.entries, entry[T]{name: name, value: v, breaker: NewCircuitBreaker(c)})
}

// Len returns the number of entries.
func (fg *FallbackGroup[T]) Len() int { return len(fg.entries) }

// Names lists entry names in the order they are tried.
func (fg *FallbackGroup[T]) Names() []string {
	out := make([]string, 0, len(fg.entries))
	for _, e := range fg.entries {
		out = append(out, e.name)
	}
	return out
}

// Execute calls fn on each entry in order until one succeeds. A cancelled
// context stops the walk and is returned as is.
func Execute[T, R any](ctx context.Context, fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range fg.entries {
		e := &fg.entries[i]
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		var out R
		err := e.breaker.Execute(func() error {
			var inner error
			out, inner = fn(e.value)
			return inner
		})
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return zero, err
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			log.WithField("backend", e.name).Debug("skipping backend, circuit open")
		} else {
			log.WithFields(log.Fields{"backend": e.name, "error": err}).Warn("backend failed, trying next")
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
