package enduse

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// SyncAll runs pass across every enduse in list concurrently, fanning
// the list across a fixed worker pool the way enduse_syncall divides
// its list across pthreads, and returns the earliest next-event
// timestamp (spec §4.8's threading note). workers <= 0 means unbounded.
func SyncAll(ctx context.Context, list []*Enduse, pass class.PassKind, t1 timestamp.Timestamp, workers int) (timestamp.Timestamp, error) {
	if len(list) == 0 {
		return timestamp.Never, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	next := make([]timestamp.Timestamp, len(list))
	for i, e := range list {
		i, e := i, e
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			next[i] = e.Sync(pass, t1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return timestamp.Invalid, err
	}
	return timestamp.Earliest(next...), nil
}
