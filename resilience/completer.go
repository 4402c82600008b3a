package resilience

import (
	"context"
	"strings"

	"github.com/maastricht-university/meeting-clarity/clients"
)

// Completer fails over across language model backends.
type Completer struct {
	group *FallbackGroup[clients.Completer]
}

var _ clients.Completer = (*Completer)(nil)

func NewCompleter(primary clients.Completer, cfg BreakerConfig) *Completer {
	return &Completer{group: NewFallbackGroup(primary.Name(), primary, cfg)}
}

func (c *Completer) AddFallback(fallback clients.Completer) {
	c.group.Add(fallback.Name(), fallback)
}

func (c *Completer) Name() string { return strings.Join(c.group.Names(), ",") }

func (c *Completer) Complete(ctx context.Context, req clients.CompletionRequest) (string, error) {
	return Execute(ctx, c.group, func(b clients.Completer) (string, error) {
		return b.Complete(ctx, req)
	})
}
