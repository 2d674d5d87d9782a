// Package module implements the kernel-facing half of the module ABI
// (spec §6): the callback table a loadable component receives at Init,
// the per-class lifecycle a component must expose, and the
// cross-module function publication convention.
//
// CLI parsing, XML/KML export and network/IPC server mode are explicit
// non-goals (spec.md §1, SPEC_FULL.md §15) and have no presence here;
// this package only exposes the programmatic surface a component
// built against gridsim-core links against.
package module

import (
	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/find"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

// Component is what a loadable module must expose (spec §6's
// "init(callbacks, module, argc, argv) -> first class pointer,
// check() -> 0 on ok, do_kill(void*) -> 0 on ok"). Init receives the
// Callbacks table rather than a bare function-pointer struct, and
// returns every class it registers rather than only the first — a Go
// component has no reason to thread a linked list of classes back out.
type Component interface {
	// Init registers this component's classes against cb and performs
	// any one-time setup. argv holds the component's own `--define`
	// style arguments (spec §6), already split on module prefix.
	Init(cb *Callbacks, argv []string) ([]*class.Class, error)
	// Check runs post-load model validation; a non-nil error aborts
	// startup the way check() returning nonzero does.
	Check() error
}

// Killer is optionally implemented by a Component that needs to run
// cleanup when an object of one of its classes is destroyed
// (spec §6's do_kill).
type Killer interface {
	Kill(o *object.Object) error
}

// Callbacks is the table passed to Component.Init: the subset of the
// kernel a component is allowed to reach, gathered behind one struct so
// a component's constructor signature stays stable as the kernel grows
// (spec §6, SPEC_FULL.md §14).
type Callbacks struct {
	Classes *class.Registry
	Objects *object.Store
	Units   *unit.Table
	Log     glog.Logger

	// module is this component's own namespace, used to qualify the
	// classes it registers and to scope PublishFunction/GetFunction
	// lookups performed on its behalf.
	module string
}

// NewCallbacks builds the callback table the engine hands each
// component at load time.
func NewCallbacks(moduleName string, classes *class.Registry, objects *object.Store, units *unit.Table, log glog.Logger) *Callbacks {
	return &Callbacks{module: moduleName, Classes: classes, Objects: objects, Units: units, Log: log}
}

// Module returns this callback table's owning module namespace.
func (cb *Callbacks) Module() string { return cb.module }

// RegisterClass begins registering a class named name under this
// component's module namespace, forwarding to class.Register so a
// component builds classes the same way the kernel's own tests do. A
// component publishes a cross-module function by chaining .Function
// on the returned Builder before .Build (spec §6's "may
// gl_publish_function any name they wish"); the published name is
// looked up later through GetFunction, keyed off whichever *class.Class
// the caller already holds.
func (cb *Callbacks) RegisterClass(name string, size uintptr, passes class.PassConfig) *class.Builder {
	return class.Register(cb.Classes, func(msg string) { cb.Log.Warn(msg) }, cb.module, name, size, passes)
}

// CreateObject allocates an object of class c, mirroring the original's
// create(object**, parent) -> 1 on ok entry point.
func (cb *Callbacks) CreateObject(c *class.Class, parent object.ID, rank int) (*object.Object, error) {
	return cb.Objects.CreateObject(c, parent, rank)
}

// GetFunction looks up a function published by name on class c,
// regardless of which module owns c (the original's cross-module
// lookup-by-name convention, e.g. powerflow's
// pwr_object_swing_swapper).
func GetFunction(c *class.Class, name string) (class.Function, bool) {
	return c.GetFunction(name)
}

// FindFile locates name on the kernel's search path (current directory,
// pathOverride or GLPATH, then the executable's own directory), the
// shared primitive both LoadUnitFile and LoadTZInfo use and that a
// component may call directly for its own data files (spec §4.5,
// §6 "Search path for both").
func FindFile(name, pathOverride string) (string, error) {
	return find.File(name, pathOverride, find.AccessRead)
}

// Find compiles and runs a group expression against the object store
// attached to cb, the module-surface equivalent of the original's
// find/group evaluation entry points.
func (cb *Callbacks) Find(expr string) (*find.Set, error) {
	c := &find.Compiler{Classes: cb.Classes, Objects: cb.Objects}
	p, err := c.Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Run(cb.Objects)
}

// Epoch is the zero simulated timestamp, exposed for startup-time code
// (e.g. a component's Init) that runs before any object has a clock of
// its own. Components that need "the current time" during a sync call
// read it from the timestamp the scheduler passes them instead.
func Epoch() timestamp.Timestamp { return timestamp.Zero }
