package scheduler

import (
	"time"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// DeltaResult is a delta-mode handler's per-tick verdict (spec §4.9).
type DeltaResult int

const (
	// SMEvent means the handler has converged and is ready to return
	// to event-mode advancement.
	SMEvent DeltaResult = iota
	// SMDelta means the handler needs another tick at the same
	// iteration count.
	SMDelta
	// SMDeltaIter means the handler needs the same tick re-run with
	// iteration_count incremented (a predictor/corrector step).
	SMDeltaIter
	// SMError aborts delta mode the same way a Fail Result aborts a
	// Step.
	SMError
)

// DeltaHandler is one delta-mode participant. Preupdate runs once on
// entry; Interupdate runs every tick (and again at the same tick, with
// iteration incremented, whenever it or a peer returns SMDeltaIter);
// CurrentInjection runs once per iteration during the powerflow
// current-injection protocol for VSI-like generators (spec §4.9's
// "communicate via a current-injection protocol").
type DeltaHandler interface {
	Preupdate(t timestamp.Timestamp) error
	Interupdate(deltaTime time.Duration, dt time.Duration, iteration int) (DeltaResult, error)
	CurrentInjection(iteration int) error
}

// DeltaConfig configures one delta-mode session.
type DeltaConfig struct {
	Step        time.Duration // fixed per-tick step, e.g. 1ms
	MaxIter     int           // bound on SMDeltaIter re-entries per tick
	ConvergeFor int           // consecutive SMEvent ticks required before exit
}

// RunDelta enters delta mode at t (spec §4.9's numbered steps): it
// calls Preupdate once on every handler, then iterates Interupdate at
// a fixed step until every handler has reported SMEvent for
// cfg.ConvergeFor consecutive ticks, and returns the (possibly
// sub-integer, at res's resolution) timestamp event-mode resumes at.
func RunDelta(t timestamp.Timestamp, res timestamp.Resolution, handlers []DeltaHandler, cfg DeltaConfig) (timestamp.Timestamp, error) {
	for _, h := range handlers {
		if err := h.Preupdate(t); err != nil {
			return timestamp.Invalid, err
		}
	}

	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 10
	}
	if cfg.ConvergeFor <= 0 {
		cfg.ConvergeFor = 2
	}

	var deltaTime time.Duration
	convergedTicks := 0

	for {
		iteration := 0
		allEvent := false
		for {
			anyDelta := false
			anyIter := false
			for _, h := range handlers {
				r, err := h.Interupdate(deltaTime, cfg.Step, iteration)
				if err != nil {
					return timestamp.Invalid, err
				}
				switch r {
				case SMError:
					return timestamp.Invalid, kernelerr.Wrap(kernelerr.ErrStateInvariantBroken, "delta-mode handler reported SM_ERROR")
				case SMDelta:
					anyDelta = true
				case SMDeltaIter:
					anyIter = true
				}
			}
			for i := range handlers {
				if err := handlers[i].CurrentInjection(iteration); err != nil {
					return timestamp.Invalid, err
				}
			}
			if !anyIter {
				allEvent = !anyDelta
				break
			}
			iteration++
			if iteration > cfg.MaxIter {
				return timestamp.Invalid, kernelerr.Wrap(kernelerr.ErrStateInvariantBroken, "delta-mode predictor/corrector exceeded its iteration bound")
			}
		}

		deltaTime += cfg.Step
		if allEvent {
			convergedTicks++
		} else {
			convergedTicks = 0
		}
		if convergedTicks >= cfg.ConvergeFor {
			break
		}
	}

	ticks := timestamp.Timestamp(deltaTime.Seconds() * float64(res.PerSecond()))
	return t + ticks, nil
}
