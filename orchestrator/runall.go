package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/meeting-clarity/meeting"
)

// RunAll analyzes reqs with at most limit running at once. Results keep the
// order of reqs; the first failure cancels the rest and is returned.
func RunAll(ctx context.Context, a Analyzer, reqs []Request, limit int) ([]*meeting.Analysis, error) {
	if limit < 1 {
		limit = 1
	}
	out := make([]*meeting.Analysis, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := a.Run(ctx, req)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
