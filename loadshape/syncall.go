package loadshape

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rob-gra/gridsim-core/timestamp"
)

// SyncAll advances every shape in shapes to t1 concurrently, fanning
// the list across a fixed worker pool the way loadshape_syncall divides
// its object list across pthreads, and returns the earliest of their
// next-event timestamps (spec §4.8's threading note; spec §4.9's
// "t_next <- earliest" fold). workers <= 0 means unbounded.
func SyncAll(ctx context.Context, shapes []*Loadshape, t1 timestamp.Timestamp, workers int) (timestamp.Timestamp, error) {
	if len(shapes) == 0 {
		return timestamp.Never, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	next := make([]timestamp.Timestamp, len(shapes))
	for i, ls := range shapes {
		i, ls := i, ls
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			t2, err := ls.Sync(t1)
			if err != nil {
				return err
			}
			next[i] = t2
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return timestamp.Invalid, err
	}
	return timestamp.Earliest(next...), nil
}
