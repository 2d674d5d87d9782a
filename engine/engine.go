// Package engine assembles the kernel's independently-built pieces —
// the class registry, object store, unit table, loadshape/enduse leaf
// subsystems and the scheduler — into one runnable simulation instance,
// and lifts what the original keeps as global mutable state
// (the class list, the object list, the loaded-module table) into an
// explicit value a caller constructs and owns (spec.md §9 REDESIGN
// FLAG: "replace ad hoc global registries with an explicit Engine/
// Runtime value a caller constructs, rather than process-wide globals").
package engine

import (
	"sync"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/enduse"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/loadshape"
	"github.com/rob-gra/gridsim-core/module"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/scheduler"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

// Engine owns every registry a running model needs and drives it
// through the scheduler's three-pass loop. It is the one long-lived
// value a program constructs; nothing underneath it is package-level
// mutable state.
type Engine struct {
	Classes *class.Registry
	Objects *object.Store
	Units   *unit.Table
	Log     glog.Logger

	Scheduler *scheduler.Scheduler

	mu         sync.Mutex
	components []module.Component
	shapes     map[object.ID]map[string]*loadshape.Loadshape
	enduses    map[object.ID]map[string]*enduse.Enduse
}

// New builds an Engine with a freshly seeded unit table and an empty
// class registry / object store.
func New(log glog.Logger) *Engine {
	e := &Engine{
		Classes: class.NewRegistry(),
		Objects: object.NewStore(),
		Units:   unit.NewTable(),
		Log:     log,
		shapes:  make(map[object.ID]map[string]*loadshape.Loadshape),
		enduses: make(map[object.ID]map[string]*enduse.Enduse),
	}
	e.Scheduler = scheduler.New(e.Objects, e.Classes, e.dispatch, log)
	return e
}

// LoadComponent runs a module.Component's Init against this engine's
// callback table, then its Check, matching the original's
// init()->check() module-load sequence (spec §6).
func (e *Engine) LoadComponent(name string, c module.Component, argv []string) error {
	cb := module.NewCallbacks(name, e.Classes, e.Objects, e.Units, e.Log)
	if _, err := c.Init(cb, argv); err != nil {
		return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "module %q: init failed: %v", name, err)
	}
	if err := c.Check(); err != nil {
		return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "module %q: check failed: %v", name, err)
	}
	e.mu.Lock()
	e.components = append(e.components, c)
	e.mu.Unlock()
	return nil
}

// AttachLoadshape binds a Loadshape to o under propName, so both the
// scheduler's dispatch and aggregate.DoubleSource lookups reach it by
// (object, property name) — a Loadshape-typed property has no scalar
// body offset of its own (property.Loadshape reports Width 0), so this
// side table is where the actual instance lives.
func (e *Engine) AttachLoadshape(o *object.Object, propName string, ls *loadshape.Loadshape) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.shapes[o.ID]
	if !ok {
		m = make(map[string]*loadshape.Loadshape)
		e.shapes[o.ID] = m
	}
	m[propName] = ls
}

// AttachEnduse binds an Enduse to o under propName, the enduse
// counterpart of AttachLoadshape.
func (e *Engine) AttachEnduse(o *object.Object, propName string, eu *enduse.Enduse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.enduses[o.ID]
	if !ok {
		m = make(map[string]*enduse.Enduse)
		e.enduses[o.ID] = m
	}
	m[propName] = eu
}

// Double implements aggregate.DoubleSource: it resolves the Loadshape
// attached to o under d.Name and returns its current load.
func (e *Engine) Double(o *object.Object, d *property.Descriptor) (float64, error) {
	ls, ok := e.lookupShape(o.ID, d.Name)
	if !ok {
		return 0, kernelerr.Wrapf(kernelerr.ErrNotFound, "object %d has no loadshape attached to property %q", o.ID, d.Name)
	}
	return ls.CurrentLoad(), nil
}

// Complex implements aggregate.ComplexSource: it resolves the Enduse
// attached to o under d.Name and returns its total power (Total).
func (e *Engine) Complex(o *object.Object, d *property.Descriptor) (property.Complex, error) {
	eu, ok := e.lookupEnduse(o.ID, d.Name)
	if !ok {
		return property.Complex{}, kernelerr.Wrapf(kernelerr.ErrNotFound, "object %d has no enduse attached to property %q", o.ID, d.Name)
	}
	return eu.Total, nil
}

func (e *Engine) lookupShape(id object.ID, name string) (*loadshape.Loadshape, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.shapes[id]
	if !ok {
		return nil, false
	}
	ls, ok := m[name]
	return ls, ok
}

func (e *Engine) lookupEnduse(id object.ID, name string) (*enduse.Enduse, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.enduses[id]
	if !ok {
		return nil, false
	}
	eu, ok := m[name]
	return eu, ok
}

func (e *Engine) shapesFor(id object.ID) []*loadshape.Loadshape {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.shapes[id]
	out := make([]*loadshape.Loadshape, 0, len(m))
	for _, ls := range m {
		out = append(out, ls)
	}
	return out
}

func (e *Engine) endusesFor(id object.ID) []*enduse.Enduse {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.enduses[id]
	out := make([]*enduse.Enduse, 0, len(m))
	for _, eu := range m {
		out = append(out, eu)
	}
	return out
}

// dispatch is the scheduler.SyncFunc this engine wires into its
// Scheduler: it syncs o's attached leaf subsystems (loadshapes during
// BOTTOMUP, enduses on every pass, each enduse branching on the pass
// itself), then runs any module-published sync function for the pass,
// folding both into one Result (spec §4.9's per-object sync dispatch).
func (e *Engine) dispatch(o *object.Object, pass class.PassKind, tPrev, t timestamp.Timestamp) (scheduler.Result, error) {
	acc := scheduler.None()

	if pass == class.BottomUp {
		for _, ls := range e.shapesFor(o.ID) {
			next, err := ls.Sync(t)
			if err != nil {
				return scheduler.Failure(err), err
			}
			acc = foldLocal(acc, scheduler.ParseSigned(next))
		}
	}

	for _, eu := range e.endusesFor(o.ID) {
		next := eu.Sync(pass, t)
		acc = foldLocal(acc, scheduler.ParseSigned(next))
	}

	if o.Class != nil {
		if fn, ok := o.Class.GetFunction(syncFunctionName(pass)); ok {
			ret, err := fn(o, tPrev, t)
			if err != nil {
				return scheduler.Failure(err), err
			}
			if raw, ok := ret.(timestamp.Timestamp); ok {
				acc = foldLocal(acc, scheduler.ParseSigned(raw))
			}
		}
	}

	return acc, nil
}

// syncFunctionName is the convention a component publishes its
// per-pass sync handler under (spec §6's "sync[pass](object, clock,
// t1) -> signed timestamp").
func syncFunctionName(pass class.PassKind) string {
	switch pass {
	case class.PreTopDown:
		return "sync_PRETOPDOWN"
	case class.BottomUp:
		return "sync_BOTTOMUP"
	case class.PostTopDown:
		return "sync_POSTTOPDOWN"
	default:
		return ""
	}
}

// foldLocal folds two scheduler.Results the same way Scheduler.Step
// folds across objects, used here to fold across one object's several
// leaf subsystems plus its module sync function.
func foldLocal(a, b scheduler.Result) scheduler.Result {
	rank := func(r scheduler.Result) int {
		switch r.Kind {
		case scheduler.NextHard:
			return 2
		case scheduler.NextSoft:
			return 1
		default:
			return 0
		}
	}
	ra, rb := rank(a), rank(b)
	if rb > ra {
		return b
	}
	if rb < ra {
		return a
	}
	if rb == 0 {
		return a
	}
	if b.At < a.At {
		return b
	}
	return a
}
