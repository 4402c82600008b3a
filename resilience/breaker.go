// Package resilience keeps the jargon extractor available when a language
// model backend misbehaves: each backend sits behind a circuit breaker and a
// FallbackGroup tries them in configured order.
package resilience

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a CircuitBreaker. Zero fields take defaults
// (5 failures, 30s open, 1 probe).
type BreakerConfig struct {
	Name         string
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
	HalfOpenMax  int           `mapstructure:"half_open_max"`
}

// CircuitBreaker opens after MaxFailures consecutive failures, rejects calls
// for ResetTimeout, then lets up to HalfOpenMax probes through. Any probe
// failure re-opens it; HalfOpenMax successful probes close it.
type CircuitBreaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu           sync.Mutex
	state        State
	failures     int
	openedAt     time.Time
	probes       int
	probeSuccess int
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 1
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.fail(probe)
	} else {
		cb.succeed(probe)
	}
	return err
}

func (cb *CircuitBreaker) admit() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.ResetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probes, cb.probeSuccess = 0, 0
		log.WithField("breaker", cb.cfg.Name).Info("circuit breaker half-open")
	}
	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenMax {
			return false, ErrCircuitOpen
		}
		cb.probes++
		return true, nil
	}
	return false, nil
}

func (cb *CircuitBreaker) fail(probe bool) {
	cb.failures++
	if probe || cb.failures >= cb.cfg.MaxFailures {
		if cb.state != StateOpen {
			log.WithFields(log.Fields{"breaker": cb.cfg.Name, "failures": cb.failures}).Warn("circuit breaker opened")
		}
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

func (cb *CircuitBreaker) succeed(probe bool) {
	cb.failures = 0
	if !probe {
		return
	}
	cb.probeSuccess++
	if cb.probeSuccess >= cb.cfg.HalfOpenMax {
		cb.state = StateClosed
		log.WithField("breaker", cb.cfg.Name).Info("circuit breaker closed")
	}
}

// State reports the current state; an open breaker whose timeout elapsed
// reads as half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset closes the breaker and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures, cb.probes, cb.probeSuccess = 0, 0, 0
}
