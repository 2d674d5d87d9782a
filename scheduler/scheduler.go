package scheduler

import (
	"time"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// SyncFunc dispatches one object's sync call for one pass. The caller
// (the module/engine layer, not this package) resolves which handler
// a given object's class implements; the scheduler only knows how to
// fold the results and walk rank order.
type SyncFunc func(o *object.Object, pass class.PassKind, tPrev, t timestamp.Timestamp) (Result, error)

// Scheduler drives the three-pass event loop over one object store
// (spec §4.9's time-advance algorithm).
type Scheduler struct {
	Objects *object.Store
	Classes *class.Registry
	Sync    SyncFunc
	Log     glog.Logger

	TPrev timestamp.Timestamp
	T     timestamp.Timestamp
}

// New returns a Scheduler starting its clock at timestamp.Zero.
func New(objects *object.Store, classes *class.Registry, sync SyncFunc, log glog.Logger) *Scheduler {
	return &Scheduler{Objects: objects, Classes: classes, Sync: sync, Log: log, TPrev: timestamp.Zero, T: timestamp.Zero}
}

// passOrder returns the rank-ordered walker for a pass: PreTopDown and
// BottomUp ascend rank (parents before children), PostTopDown
// descends (children before parents) per spec §5's ordering guarantee.
func (s *Scheduler) passOrder(pass class.PassKind) func(func(*object.Object) error) error {
	switch pass {
	case class.PostTopDown:
		return s.Objects.ForEachPassTopDown
	default:
		return s.Objects.ForEachPass
	}
}

// Step advances the scheduler through one complete PRETOPDOWN/BOTTOMUP/
// POSTTOPDOWN cycle at the current clock and returns the next
// timestamp to resume at (spec §4.9's loop body). A Fail result from
// any object aborts the step and returns the wrapped error.
func (s *Scheduler) Step() (timestamp.Timestamp, error) {
	acc := None()

	for _, pass := range []class.PassKind{class.PreTopDown, class.BottomUp, class.PostTopDown} {
		walk := s.passOrder(pass)
		var stepErr error
		err := walk(func(o *object.Object) error {
			if o.Class == nil || !o.Class.PassConfig.Implements(pass) {
				return nil
			}
			start := time.Now()
			r, err := s.Sync(o, pass, s.TPrev, s.T)
			o.Class.Profile.Record(time.Since(start))
			if err != nil {
				stepErr = err
				return err
			}
			if r.Kind == Fail {
				stepErr = r.Err
				if stepErr == nil {
					stepErr = kernelerr.Wrapf(kernelerr.ErrStateInvariantBroken, "object %q failed sync on pass %d", o.Name, pass)
				}
				return stepErr
			}
			acc = foldResult(acc, r)
			return nil
		})
		if err != nil {
			return timestamp.Invalid, err
		}
		if stepErr != nil {
			return timestamp.Invalid, stepErr
		}
	}

	next := timestamp.Never
	if acc.Kind != Indifferent {
		next = acc.At
	}
	s.TPrev, s.T = s.T, next
	return next, nil
}

// Run steps the scheduler until it reaches stopAt or no further event
// is scheduled, matching the top-level "t_prev, t <- t, t_next" loop.
// It does not itself enter delta mode; delta mode runs separately
// through RunDelta.
func (s *Scheduler) Run(stopAt timestamp.Timestamp) error {
	for s.T != timestamp.Never && s.T <= stopAt {
		if _, err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns the accumulated per-class sync profiler for every
// class registered in Classes (spec §4.9's "class profiling").
func (s *Scheduler) Profile() map[string]class.Profiler {
	out := make(map[string]class.Profiler, len(s.Classes.All()))
	for _, c := range s.Classes.All() {
		out[c.Module+"/"+c.Name] = c.Profile
	}
	return out
}
