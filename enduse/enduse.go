// Package enduse implements the ZIP-decomposed electric-load (and
// non-electric heat-load) accumulator of spec §4.8: a shape-or-direct
// driven total power split into constant-power/current/impedance
// components (named power/current/admittance, "misnomers" carried over
// from the teacher's own field names), plus a heat-gain channel used by
// thermal loads that do not participate in the electrical network.
//
// Grounded on original_source/core/enduse.{h,c}: Sync reproduces
// enduse_sync's PRETOPDOWN (energy/heat integration) and BOTTOMUP
// (ZIP recompute, demand peak tracking, heatgain) branches directly.
// The motor[]/electronic[] stall-model fields enduse_get_part exposes
// are not ported — spec §4.8 never mentions them, and no other module
// in scope drives a motor-stall submodel (see DESIGN.md).
package enduse

import (
	"math"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// btuPerKWh is the heat-gain conversion constant (Btu/h per kW),
// carried verbatim from enduse_sync's BOTTOMUP branch.
const btuPerKWh = 3412.1416

// Config holds the EUC_* bits relevant to Sync.
type Config uint32

// FlagHeatLoad routes the shape's driven load to heatgain instead of
// the electrical ZIP decomposition (the original's EUC_HEATLOAD).
const FlagHeatLoad Config = 1 << 0

// Driver supplies a shape-driven enduse's instantaneous load and
// whether a shape is actually attached and running (the original's
// `e->shape && e->shape->type != MT_UNKNOWN` test and `e->shape->load`
// read). The loadshape package's *Loadshape satisfies this directly.
type Driver interface {
	Active() bool
	CurrentLoad() float64
	NextEvent() timestamp.Timestamp
}

// Enduse is one accumulator instance (the original's struct s_enduse).
type Enduse struct {
	Config Config
	Shape  Driver // nil for a directly-driven (non-shape) enduse

	Total  property.Complex
	Energy property.Complex
	Demand property.Complex

	Power      property.Complex
	Current    property.Complex
	Admittance property.Complex

	BreakerAmps float64

	ImpedanceFraction float64
	CurrentFraction   float64
	PowerFraction     float64
	PowerFactor       float64 // default 1, per enduse_create
	VoltageFactor     float64

	Heatgain           float64
	HeatgainFraction   float64 // default 1, per enduse_create
	CumulativeHeatgain float64

	TLast timestamp.Timestamp
}

// New returns an Enduse with the original's enduse_create defaults
// (power factor and heatgain fraction both 1).
func New() *Enduse {
	return &Enduse{PowerFactor: 1, HeatgainFraction: 1}
}

// Init resets the accumulator's sync clock (enduse_init).
func (e *Enduse) Init() {
	e.TLast = timestamp.Zero
}

// Sync advances the accumulator through the PRETOPDOWN or BOTTOMUP
// pass at t1, matching enduse_sync. Other passes are no-ops. Returns
// the shape's next event time, or timestamp.Never for an unshaped
// enduse (the original's closing ternary).
func (e *Enduse) Sync(pass class.PassKind, t1 timestamp.Timestamp) timestamp.Timestamp {
	switch pass {
	case class.PreTopDown:
		if e.TLast > timestamp.Zero {
			dt := float64(t1-e.TLast) / 3600
			e.Energy.Re += e.Total.Re * dt
			e.Energy.Im += e.Total.Im * dt
			e.CumulativeHeatgain += e.Heatgain * dt
			if dt > 0 {
				e.Heatgain = 0
			}
		}
		e.TLast = t1

	case class.BottomUp:
		shapeActive := e.Shape != nil && e.Shape.Active()
		switch {
		case shapeActive:
			if e.Config&FlagHeatLoad != 0 {
				e.Heatgain = e.Shape.CurrentLoad()
			} else {
				e.zipFromShape(e.Shape.CurrentLoad())
			}
		case e.VoltageFactor > 0 && e.Config&FlagHeatLoad == 0:
			e.Total.Re = e.Power.Re + e.Current.Re + e.Admittance.Re
			e.Total.Im = e.Power.Im + e.Current.Im + e.Admittance.Im
		}

		if e.Config&FlagHeatLoad != 0 {
			e.Heatgain *= e.HeatgainFraction
		} else {
			if e.Total.Re > e.Demand.Re {
				e.Demand = e.Total
			}
			if e.HeatgainFraction > 0 {
				e.Heatgain = e.Total.Re * e.HeatgainFraction * btuPerKWh
			}
		}
		e.TLast = t1
	}

	if shapeActive := e.Shape != nil && e.Shape.Active(); shapeActive {
		return e.Shape.NextEvent()
	}
	return timestamp.Never
}

// zipFromShape recomputes Total/Power/Current/Admittance from a
// shape-driven load P, matching enduse_sync's BOTTOMUP electric branch.
func (e *Enduse) zipFromShape(load float64) {
	p := 0.0
	if e.VoltageFactor > 0 {
		p = load * (e.PowerFraction + e.CurrentFraction + e.ImpedanceFraction)
	}
	e.Total.Re = p
	if math.Abs(e.PowerFactor) < 1 {
		sign := 1.0
		if e.PowerFactor < 0 {
			sign = -1
		}
		e.Total.Im = sign * p * math.Sqrt(1/(e.PowerFactor*e.PowerFactor)-1)
	} else {
		e.Total.Im = 0
	}

	e.Power.Re = e.Total.Re * e.PowerFraction
	e.Power.Im = e.Total.Im * e.PowerFraction
	e.Current.Re = e.Total.Re * e.CurrentFraction
	e.Current.Im = e.Total.Im * e.CurrentFraction
	e.Admittance.Re = e.Total.Re * e.ImpedanceFraction
	e.Admittance.Im = e.Total.Im * e.ImpedanceFraction
}
