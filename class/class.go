// Package class implements the per-module class registry: publishing a
// named class and its properties, single inheritance with pass-config
// compatibility checks, a per-class function dictionary, and per-class
// profiling counters (spec §4.3).
package class

import (
	"time"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/property"
)

// PassKind names one of the scheduler's three sync passes a class may
// implement (spec §2, §4.9).
type PassKind int

const (
	PreTopDown PassKind = iota
	BottomUp
	PostTopDown
)

// PassConfig is a bitmask of the passes a class implements, plus the
// two override-safety flags from original_source/core/class.c.
type PassConfig uint32

const (
	PCPreTopDown          PassConfig = 1 << 0
	PCBottomUp            PassConfig = 1 << 1
	PCPostTopDown         PassConfig = 1 << 2
	PCUnsafeOverrideOmit  PassConfig = 1 << 3 // parent asserts children must not silently omit a pass
	PCParentOverrideOmit  PassConfig = 1 << 4 // child asserts it is intentionally omitting an inherited pass
)

// Implements reports whether the class implements the named pass.
func (pc PassConfig) Implements(p PassKind) bool {
	switch p {
	case PreTopDown:
		return pc&PCPreTopDown != 0
	case BottomUp:
		return pc&PCBottomUp != 0
	case PostTopDown:
		return pc&PCPostTopDown != 0
	default:
		return false
	}
}

// headerFieldNames are the object-header field names a property cannot
// reuse (spec §4.3).
var headerFieldNames = map[string]bool{
	"parent": true, "rank": true, "clock": true, "valid_to": true,
	"latitude": true, "longitude": true, "in_svc": true, "out_svc": true,
	"name": true, "flags": true,
}

// Function is a per-class operation published under a name, the Go
// counterpart of the original's function dictionary (DC_gen_object_
// update, pwr_object_swing_status_check, and similar module hooks).
type Function func(obj interface{}, args ...interface{}) (interface{}, error)

// Profiler accumulates the per-class counters the scheduler reports
// through its profile summary (SPEC_FULL.md §6, class.c's profiler
// struct): live object count, cumulative sync calls, and cumulative
// time spent in sync.
type Profiler struct {
	NumObjects int
	SyncCalls  int64
	SyncTime   time.Duration
}

// Record adds one sync call's elapsed time to the profiler.
func (p *Profiler) Record(d time.Duration) {
	p.SyncCalls++
	p.SyncTime += d
}

// Class is a published class descriptor: a named collection of
// properties and functions, with optional single inheritance.
type Class struct {
	ID         int
	Module     string
	Name       string // <= 63 chars
	Size       uintptr
	PassConfig PassConfig
	Parent     *Class

	properties     []*property.Descriptor
	propertyByName map[string]*property.Descriptor
	functions      map[string]Function
	deprecatedWarned map[string]bool

	Profile Profiler
}

// FindProperty walks this class's property list, then recurses into
// the parent chain, emitting a one-time deprecation notice (via warn)
// the first time a deprecated property is resolved — matching
// class_find_property_rec, but with the self-reference loop the
// original merely detects made structurally impossible: Parent is only
// ever set by Builder.Inherit, which already rejects self-inheritance.
func (c *Class) FindProperty(name string, warn func(msg string)) *property.Descriptor {
	for oclass := c; oclass != nil; oclass = oclass.Parent {
		if d, ok := oclass.propertyByName[name]; ok {
			if d.Flags&property.FlagDeprecated != 0 && warn != nil && !oclass.deprecatedWarned[name] {
				oclass.deprecatedWarned[name] = true
				warn("property " + name + " is deprecated")
			}
			return d
		}
	}
	return nil
}

// Properties returns this class's own published properties (not
// including inherited ones), in declaration order.
func (c *Class) Properties() []*property.Descriptor { return c.properties }

// GetFunction returns the named function published on this class,
// matching class_get_function (no parent-chain fallback in the
// original).
func (c *Class) GetFunction(name string) (Function, bool) {
	f, ok := c.functions[name]
	return f, ok
}

// Registry holds every class registered across all loaded modules,
// keyed by (module, name) the way class_get_class_from_classname_in_module
// looks classes up, replacing the original's first_class/last_class
// global linked list (§9 REDESIGN FLAG).
type Registry struct {
	classes   []*Class
	byModName map[string]*Class // "module\x00name" -> class
}

// NewRegistry returns an empty class registry.
func NewRegistry() *Registry {
	return &Registry{byModName: make(map[string]*Class)}
}

func key(module, name string) string { return module + "\x00" + name }

// Lookup finds a class by module and name.
func (r *Registry) Lookup(module, name string) (*Class, bool) {
	c, ok := r.byModName[key(module, name)]
	return c, ok
}

// All returns every registered class, in registration order.
func (r *Registry) All() []*Class { return r.classes }

func (r *Registry) register(c *Class) {
	c.ID = len(r.classes)
	r.classes = append(r.classes, c)
	r.byModName[key(c.Module, c.Name)] = c
}
