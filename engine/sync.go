package engine

import (
	"context"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/enduse"
	"github.com/rob-gra/gridsim-core/loadshape"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// allShapes and allEnduses return every attachment across every
// object, for the whole-model fan-out SyncAllLoadshapes/
// SyncAllEnduses run concurrently (spec §5's "leaf subsystems ...
// fanned to a worker pool").
func (e *Engine) allShapes() []*loadshape.Loadshape {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*loadshape.Loadshape
	for _, m := range e.shapes {
		for _, ls := range m {
			out = append(out, ls)
		}
	}
	return out
}

func (e *Engine) allEnduses() []*enduse.Enduse {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*enduse.Enduse
	for _, m := range e.enduses {
		for _, eu := range m {
			out = append(out, eu)
		}
	}
	return out
}

// SyncAllLoadshapes runs every attached loadshape's Sync concurrently,
// across the whole model rather than per object, for callers that want
// to advance leaf subsystems ahead of (or independent of) a scheduler
// Step — e.g. a delta-mode preupdate pass.
func (e *Engine) SyncAllLoadshapes(ctx context.Context, t timestamp.Timestamp, workers int) (timestamp.Timestamp, error) {
	return loadshape.SyncAll(ctx, e.allShapes(), t, workers)
}

// SyncAllEnduses runs every attached enduse's Sync concurrently for
// one pass, the enduse counterpart of SyncAllLoadshapes.
func (e *Engine) SyncAllEnduses(ctx context.Context, pass class.PassKind, t timestamp.Timestamp, workers int) (timestamp.Timestamp, error) {
	return enduse.SyncAll(ctx, e.allEnduses(), pass, t, workers)
}
