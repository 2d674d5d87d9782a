package engine

import (
	"github.com/rob-gra/gridsim-core/scheduler"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// EnterDeltaMode suspends event-mode advancement and runs the
// fixed-step delta loop across handlers, returning the timestamp
// event-mode should resume at (spec §4.9's delta-mode entry). The
// caller supplies handlers explicitly rather than this Engine
// discovering them itself: only objects whose class set
// object.OFHasDeltaMode actually participate, and which of those are
// "in" a given delta-mode session is a model-level decision the engine
// does not make on its own.
func (e *Engine) EnterDeltaMode(t timestamp.Timestamp, res timestamp.Resolution, handlers []scheduler.DeltaHandler, cfg scheduler.DeltaConfig) (timestamp.Timestamp, error) {
	resume, err := scheduler.RunDelta(t, res, handlers, cfg)
	if err != nil {
		return timestamp.Invalid, err
	}
	e.Scheduler.TPrev, e.Scheduler.T = t, resume
	return resume, nil
}

// Run steps the scheduler until stopAt, a thin pass-through kept on
// Engine so a caller drives the whole model through one value.
func (e *Engine) Run(stopAt timestamp.Timestamp) error {
	return e.Scheduler.Run(stopAt)
}
