package orchestrator

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/clients"
	cfg "github.com/maastricht-university/meeting-clarity/config"
	"github.com/maastricht-university/meeting-clarity/jargon"
	"github.com/maastricht-university/meeting-clarity/observe"
	"github.com/maastricht-university/meeting-clarity/resilience"
	"github.com/maastricht-university/meeting-clarity/store"
	"github.com/maastricht-university/meeting-clarity/vocab"
)

// Build assembles a Pipeline and its store from configuration. The caller
// closes the store.
func Build(c *cfg.Root, m *observe.Metrics) (*Pipeline, *store.Store, error) {
	asr := clients.NewASR(clients.NewHTTPWithTimeout(c.Services.ASR.Timeout), c.Services.ASR.URL, c.Services.ASR.Retries)

	v, err := vocab.Load(c.Vocabulary.Path)
	if err != nil {
		return nil, nil, err
	}
	llm, err := CompleterChain(c.Extractor)
	if err != nil {
		return nil, nil, err
	}
	val := c.Scoring.Validator()
	ex, err := jargon.NewLLMExtractor(llm, v, val, jargon.Options{
		MaxTranscriptChars: c.Extractor.MaxTranscriptChars,
		MaxTokens:          c.Extractor.MaxTokens,
		Temperature:        clients.Temp(c.Extractor.Temperature),
	})
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(c.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	p, err := NewPipeline(c, asr, ex, st, m)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	log.WithFields(log.Fields{"terms": v.Len(), "extractor": llm.Name()}).Info("pipeline ready")
	return p, st, nil
}

// CompleterChain builds the primary backend followed by the fallbacks.
// Backends that cannot be constructed are skipped with a warning.
func CompleterChain(x cfg.Extractor) (*resilience.Completer, error) {
	var chain *resilience.Completer
	var errs []error
	for _, lc := range append([]clients.LLMConfig{x.Primary}, x.Fallbacks...) {
		c, err := clients.NewCompleter(lc)
		if err != nil {
			log.WithFields(log.Fields{"provider": lc.Provider, "error": err}).Warn("skipping language model backend")
			errs = append(errs, err)
			continue
		}
		if chain == nil {
			chain = resilience.NewCompleter(c, x.Breaker)
			continue
		}
		chain.AddFallback(c)
	}
	if chain == nil {
		return nil, fmt.Errorf("no usable language model backend: %w", errors.Join(errs...))
	}
	return chain, nil
}
