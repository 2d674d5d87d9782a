// Package object implements the simulation kernel's object store: a flat
// collection of objects, each carrying a fixed header immediately followed
// by its class's property body, plus the id/name indices and parent-rank
// bookkeeping the scheduler relies on (spec §3, §4.4). No original_source
// file covers this module directly (object.c/object.h were not part of the
// retrieved pack); the header layout and invariants below are taken from
// spec.md §3's "Object header" entry verbatim.
package object

import (
	"time"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/random"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// ID is a handle into a Store's id index. A weak parent reference is
// modeled as an ID rather than a pointer or a {id,generation} pair: objects
// are destroyed only at shutdown (spec §3's lifecycle list), so a
// generation counter would never advance and is omitted as dead weight —
// SPEC_FULL.md §7's "light handle" decision.
type ID int

// Invalid is the zero-value, never-assigned ID; object ids start at 1 so a
// bare ID field that was never set compares equal to Invalid.
const Invalid ID = 0

// Flags is the object header's bitfield (spec §3). The lock bit is the
// only one the kernel itself ever tests (InService and rank bookkeeping
// never touch it) — it exists for modules that opt into guarding their own
// property reads/writes across the worker fan-out described in spec §5.
type Flags uint32

const (
	// OFLocked marks the object's lock word held; set/cleared only by a
	// module that opted in, never by the kernel's own bookkeeping.
	OFLocked Flags = 1 << iota
	// OFHasDeltaMode marks that the object's class implements a delta-mode
	// handler the scheduler should call once event mode is exhausted.
	OFHasDeltaMode
	// OFInDeltaMode is set by the scheduler while this object is being
	// iterated under delta-mode subsecond stepping.
	OFInDeltaMode
)

// Object is one simulation entity: the fixed header below, immediately
// followed by its class's property body (spec §3's "Object header" entry).
type Object struct {
	ID      ID
	Name    string // optional, globally unique when set
	GroupID string

	Parent ID // weak reference; Invalid if none
	Rank   int

	Clock         timestamp.Timestamp
	ValidTo       timestamp.Timestamp
	InSvc         timestamp.Timestamp
	OutSvc        timestamp.Timestamp
	ScheduleSkew  time.Duration
	Heartbeat     time.Duration

	Latitude, Longitude float64
	Namespace           string

	Flags Flags

	RNG random.State

	ForecastChain []Forecast

	Class *class.Class
	Body  []byte
}

// Forecast is one link of an object's forecast chain (spec §3), a named
// time series a module publishes ahead of the simulated clock.
type Forecast struct {
	Name   string
	Times  []timestamp.Timestamp
	Values []float64
}

// InService reports whether the object is in service at t: in_svc <= t <
// out_svc (spec §4.4's service-status predicate).
func (o *Object) InService(t timestamp.Timestamp) bool {
	return o.InSvc <= t && t < o.OutSvc
}

// Locked reports whether the object's lock word is held.
func (o *Object) Locked() bool { return o.Flags&OFLocked != 0 }
