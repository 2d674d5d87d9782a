// Package loadshape implements the driven-load state machines of spec
// §4.8: analog, pulsed, modulated, queued and scheduled shapes, each
// advancing a (q,r,s) integrator against a driving Schedule and
// producing Load, the instantaneous power multiplier the owning
// enduse or end-load object reads back.
//
// Grounded on original_source/core/loadshape.c: the queue level q, its
// rate of change r, the on/off state s and the pair of thresholds
// d[0]/d[1] are kept under the same names and with the same per-kind
// formulas the original computes in its sync_analog/sync_pulsed/
// sync_modulated/sync_queued/sync_scheduled helpers.
package loadshape

import (
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/random"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// Kind selects which state machine Sync runs.
type Kind int

const (
	KindUnknown Kind = iota
	KindAnalog
	KindPulsed
	KindModulated
	KindQueued
	KindScheduled
)

// PulseType distinguishes a fixed-power pulse from a fixed-duration one
// (the original's MPT_POWER / MPT_TIME).
type PulseType int

const (
	PulseUnknown PulseType = iota
	PulsePower
	PulseTime
)

// Modulation selects which parameter a modulated shape varies to track
// its schedule value (the original's MMT_AMPLITUDE/MMT_PULSEWIDTH/
// MMT_FREQUENCY).
type Modulation int

const (
	ModUnknown Modulation = iota
	ModAmplitude
	ModPulseWidth
	ModFrequency
)

// On/off state values for the pulsed, modulated and queued machines.
const (
	StateOff = 0
	StateOn  = 1
)

// Schedule is the external driver a loadshape tracks: a piecewise value
// over time together with the duration and fraction of the current
// schedule segment and the timestamp of its next transition. Modules
// that own a schedule engine (not part of this package) populate and
// refresh this struct; loadshape.Sync only reads it.
type Schedule struct {
	Value    float64
	Duration float64 // hours remaining valid in the current segment; <=0 means inactive
	Fraction float64
	NextT    timestamp.Timestamp
	Weekdays uint8 // bit i set => weekday i (Sunday=0) is an active day, scheduled shapes only
}

// AnalogParams configures an analog shape (spec §4.8's load-direct
// table row): at most one of Energy/Power is set, selecting whether the
// schedule value is read as an energy or power scale factor.
type AnalogParams struct {
	Energy float64
	Power  float64
}

// PulsedParams configures a pulsed shape.
type PulsedParams struct {
	Energy     float64
	Scalar     float64
	PulseType  PulseType
	PulseValue float64
}

// ModulatedParams configures a modulated shape.
type ModulatedParams struct {
	Energy      float64
	Scalar      float64
	PulseType   PulseType
	PulseValue  float64
	PulseEnergy float64
	Modulation  Modulation
}

// QueuedParams configures a queued shape.
type QueuedParams struct {
	Energy     float64
	Scalar     float64
	PulseType  PulseType
	PulseValue float64
	QOn        float64
	QOff       float64
}

// ScheduledParams configures a scheduled shape's four-segment daily
// cycle (off/ramp-up/on/ramp-down).
type ScheduledParams struct {
	Low, High       float64
	OnTime, OffTime float64 // hours of day
	OnRamp, OffRamp float64 // q-per-hour ramp rates
	Weekdays        uint8
}

// segment names the scheduled shape's four-state cycle.
type segment int

const (
	segOff segment = iota
	segRampUp
	segOn
	segRampDown
)

// Loadshape is one instance of a driven load state machine (spec
// §4.8). Q/R/S/D mirror the original's ls->q, ls->r, ls->s, ls->d[2];
// T0/T2 mirror ls->t0/ls->t2, the last-sync and next-event timestamps.
type Loadshape struct {
	Kind     Kind
	Schedule *Schedule
	DPdV     float64 // ambient voltage-sensitivity factor, applied to Load

	// TZ is the timezone a scheduled shape reads OnTime/OffTime/Weekdays
	// against (nil means UTC, matching timestamp.Local's convention).
	TZ *timestamp.Spec

	Q, R float64
	D    [2]float64
	S    int
	Seg  segment

	Load float64

	T0, T2 timestamp.Timestamp

	Analog    AnalogParams
	Pulsed    PulsedParams
	Modulated ModulatedParams
	Queued    QueuedParams
	Scheduled ScheduledParams

	RNG random.State
	Log glog.Logger
}

// Init sets up the threshold pair D and resets the event clock,
// matching loadshape_recalc's per-kind initialization. Call once after
// the Params field for Kind has been populated and before the first
// Sync.
func (ls *Loadshape) Init() error {
	switch ls.Kind {
	case KindAnalog:
		// no threshold state; Load is recomputed directly from Schedule.
	case KindPulsed, KindModulated:
		// Indices here are array slots, not on/off labels: d[0] is the
		// rising threshold, d[1] the falling one (loadshape_recalc).
		ls.D[0] = 1
		ls.D[1] = 0
	case KindQueued:
		if ls.Queued.QOn <= ls.Queued.QOff {
			return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: queued q_on must exceed q_off")
		}
		ls.D[StateOff] = ls.Queued.QOff
		ls.D[StateOn] = ls.Queued.QOn
		ls.S = StateOff
	case KindScheduled:
		ls.D[StateOff] = ls.Scheduled.Low
		ls.D[StateOn] = ls.Scheduled.High
	default:
		return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "loadshape: unrecognized kind %d", ls.Kind)
	}
	ls.T2 = timestamp.Zero
	return nil
}

// nextPulseEvent computes ls.T2 from the current rate r and the
// distance to the active threshold, matching the tail of sync_pulsed/
// sync_modulated/sync_queued. Pulsed events only bump a degenerate
// zero-distance result by one tick; modulated and queued always add
// one, reproducing the original's two slightly different formulas.
func (ls *Loadshape) nextPulseEvent(t1 timestamp.Timestamp, alwaysBumpOne bool) {
	if ls.R != 0 {
		delta := (ls.D[ls.S] - ls.Q) / ls.R * 3600
		ls.T2 = t1 + timestamp.Timestamp(delta)
		if alwaysBumpOne {
			ls.T2++
		} else if ls.T2 == t1 {
			ls.T2 = t1 + 1
		}
	} else {
		ls.T2 = timestamp.Never
	}
	if ls.Schedule != nil && ls.Schedule.NextT < ls.T2 {
		ls.T2 = ls.Schedule.NextT
	}
}

// Sync advances the loadshape to t1 and returns the timestamp of its
// next required event (or timestamp.Never if none is pending),
// matching loadshape_sync's top-level dispatch (spec §4.8).
func (ls *Loadshape) Sync(t1 timestamp.Timestamp) (timestamp.Timestamp, error) {
	if ls.Schedule != nil && t1 > ls.T0 {
		dt := 0.0
		if ls.T0 > 0 {
			dt = float64(t1-ls.T0) / 3600
		}
		if ls.Schedule.Duration <= 0 {
			ls.T0 = t1
			ls.Load = 0
			ls.T2 = ls.Schedule.NextT
			return ls.T2, nil
		}
		switch ls.Kind {
		case KindAnalog:
			ls.syncAnalog()
			ls.T2 = ls.Schedule.NextT
		case KindPulsed:
			ls.Q += ls.R * dt
			if err := ls.syncPulsed(); err != nil {
				return 0, err
			}
			ls.nextPulseEvent(t1, false)
		case KindModulated:
			ls.Q += ls.R * dt
			if err := ls.syncModulated(); err != nil {
				return 0, err
			}
			ls.nextPulseEvent(t1, true)
		case KindQueued:
			ls.Q += ls.R * dt
			if err := ls.syncQueued(); err != nil {
				return 0, err
			}
			ls.nextPulseEvent(t1, true)
		default:
			return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "loadshape: kind %d cannot be schedule-driven", ls.Kind)
		}
	} else if ls.Kind == KindScheduled {
		ls.syncScheduled(t1)
	}
	ls.T0 = t1
	if ls.T2 > 0 {
		return ls.T2, nil
	}
	return timestamp.Never, nil
}

func (ls *Loadshape) syncAnalog() {
	switch {
	case ls.Analog.Energy > 0:
		ls.Load = ls.Schedule.Value * ls.Analog.Energy * ls.Schedule.Fraction * ls.DPdV
	case ls.Analog.Power > 0:
		ls.Load = ls.Schedule.Value * ls.Analog.Power * ls.DPdV
	default:
		ls.Load = ls.Schedule.Value * ls.DPdV
	}
}

// syncPulsed runs the on/off transition test then recomputes r/load
// for the resulting state, matching sync_pulsed's goto-based machine:
// d[0] is the rising threshold checked while off (r>=0), d[1] the
// falling one checked while on (r<0).
func (ls *Loadshape) syncPulsed() error {
	if ls.R >= 0 {
		if ls.R != 0 && ls.Q >= ls.D[0]-ls.R/3600 {
			ls.Q = 1
			ls.S = StateOn
			return ls.pulsedTurnOn()
		}
		ls.S = StateOff
		ls.pulsedTurnOff()
		return nil
	}
	if ls.R != 0 && ls.Q <= ls.D[1]-ls.R/3600 {
		ls.Q = 0
		ls.S = StateOff
		ls.pulsedTurnOff()
		return nil
	}
	ls.S = StateOn
	return ls.pulsedTurnOn()
}

func (ls *Loadshape) pulsedTurnOff() {
	ls.Load = 0
	p := &ls.Pulsed
	switch {
	case ls.Schedule.Value > 0:
		ls.R = ls.Schedule.Value * p.Scalar / p.Energy
	default:
		ls.R = 0
	}
}

func (ls *Loadshape) pulsedTurnOn() error {
	p := &ls.Pulsed
	switch p.PulseType {
	case PulsePower:
		ls.Load = p.PulseValue * ls.DPdV
		ls.R = -p.Scalar * ls.Load / p.Energy
	case PulseTime:
		if p.PulseValue == 0 {
			return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: pulsed pulse_value must be nonzero for PulseTime")
		}
		ls.Load = p.Energy / (p.PulseValue / 3600 * p.Scalar) * ls.DPdV
		ls.R = -3600 / p.PulseValue
	default:
		return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: pulsed pulse_type is not set")
	}
	return nil
}

func (ls *Loadshape) syncModulated() error {
	if ls.R >= 0 {
		if ls.R != 0 && ls.Q >= ls.D[0]-ls.R/3600 {
			ls.Q = 1
			ls.S = StateOn
			return ls.modulatedTurnOn()
		}
		ls.S = StateOff
		return ls.modulatedTurnOff()
	}
	if ls.R != 0 && ls.Q <= ls.D[1]-ls.R/3600 {
		ls.Q = 0
		ls.S = StateOff
		return ls.modulatedTurnOff()
	}
	ls.S = StateOn
	return ls.modulatedTurnOn()
}

func (ls *Loadshape) modulatedTurnOff() error {
	ls.Load = 0
	m := &ls.Modulated
	if ls.Schedule.Value <= 0 {
		ls.R = 0
		return nil
	}
	switch m.Modulation {
	case ModAmplitude:
		period := ls.Schedule.Duration / m.Scalar
		dutyCycle := m.dutyCycle(period)
		ls.R = 3600 / (period - dutyCycle*period)
	case ModPulseWidth:
		// Unlike the on-branch below, the original's off-time PWM
		// formula does not derive period from a pulse count: ton
		// reduces to schedule.Value/Energy (the scalar cancels), kept
		// spelled out to match the teacher's literal expression.
		period := ls.Schedule.Duration / m.Scalar
		ton := ls.Schedule.Value * m.Scalar / m.Energy / m.Scalar
		ls.R = 3600 / (period - ton)
	case ModFrequency:
		ton, power := m.frequencyPulse()
		dutyCycle := ls.Schedule.Value / m.Energy / m.Scalar
		if dutyCycle < 1 {
			period := ton / dutyCycle
			ls.R = 3600 / (period - ton)
		} else {
			ls.R = 0
		}
		_ = power
	default:
		return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: modulated modulation type is not set")
	}
	return nil
}

func (ls *Loadshape) modulatedTurnOn() error {
	m := &ls.Modulated
	switch m.Modulation {
	case ModAmplitude:
		period := ls.Schedule.Duration / m.Scalar
		dutyCycle := m.dutyCycle(period)
		ls.R = -3600 / (dutyCycle * period)
		ls.Load = ls.Schedule.Value * m.Scalar
	case ModPulseWidth:
		power := m.pulsePower()
		pulseCount := m.Energy / power * ls.Schedule.Duration / 3600
		ton := ls.Schedule.Value * m.Scalar / m.Energy / pulseCount
		ls.R = -3600 / ton
		ls.Load = power
	case ModFrequency:
		ton, power := m.frequencyPulse()
		if ton > 0 {
			ls.R = -3600 / ton
		} else {
			ls.R = 0
		}
		ls.Load = power
	default:
		return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: modulated modulation type is not set")
	}
	return nil
}

// dutyCycle returns the AM modulation's pulse width as a fraction of
// period, from either a fixed pulse duration or a fixed pulse energy.
func (m *ModulatedParams) dutyCycle(period float64) float64 {
	if m.PulseType == PulseTime {
		return m.PulseValue / period
	}
	return m.Energy * 3600 / m.PulseValue / period
}

// pulsePower returns the PWM modulation's fixed pulse power, from
// either a fixed power value or one derived from a fixed pulse energy.
func (m *ModulatedParams) pulsePower() float64 {
	if m.PulseType == PulseTime {
		return m.Energy * 3600 / m.PulseValue
	}
	return m.PulseValue
}

// frequencyPulse returns the FM modulation's (on-time, power) pair,
// whichever of the two the configuration fixes directly.
func (m *ModulatedParams) frequencyPulse() (ton, power float64) {
	if m.PulseType == PulseTime {
		ton = m.PulseValue
		power = m.PulseEnergy * m.Scalar / ton * 3600
		return ton, power
	}
	power = m.PulseValue
	ton = m.PulseEnergy * m.Scalar / power * 3600
	return ton, power
}

// syncQueued runs the queued shape's state test and load/rate update,
// matching sync_queued exactly including its if/else-if (not
// symmetric threshold) structure: crossing d[0] always wins over
// crossing d[1] when both hold at once.
func (ls *Loadshape) syncQueued() error {
	q := &ls.Queued
	if q.PulseType == PulsePower {
		ls.Load = float64(ls.S) * q.PulseValue * ls.DPdV
	} else {
		if q.PulseValue == 0 || q.Scalar == 0 {
			return kernelerr.Wrap(kernelerr.ErrInvalidArgument, "loadshape: queued pulse_value and scalar must be nonzero for PulseTime")
		}
		ls.Load = float64(ls.S) * q.Energy / q.PulseValue / q.Scalar * ls.DPdV
	}

	queueValue := ls.D[StateOn] - ls.D[StateOff]
	switch {
	case ls.Q > ls.D[StateOff]:
		ls.S = StateOn
		if ls.Load != 0 {
			duration := (q.Energy * queueValue) / ls.Load
			ls.R = -1 / duration
		}
	case ls.Q < ls.D[StateOn]:
		ls.S = StateOff
		sample, err := random.Exponential(ls.Log, random.RNG3, &ls.RNG, ls.Schedule.Value*q.Scalar*queueValue)
		if err != nil {
			return err
		}
		ls.R = 1 / sample
	}
	return nil
}

// syncScheduled drives the state off wall-clock hour-of-day and weekday
// tested against OnTime/OffTime/Weekdays, advancing through
// off -> ramp-up -> on -> ramp-down -> off exactly as sync_scheduled
// does: the segment only changes once t1 reaches the previously
// computed T2; between segment changes Q simply integrates at the
// current rate R. The very first call (T2 still Zero) instead derives
// the initial segment from the actual hour/weekday of t1, so a shape
// started mid-cycle or on an inactive weekday enters in the right
// state rather than always starting from segOff.
func (ls *Loadshape) syncScheduled(t1 timestamp.Timestamp) {
	p := &ls.Scheduled
	dt := 0.0
	if ls.T0 > 0 {
		dt = float64(t1-ls.T0) / 3600
	}

	if t1 < ls.T2 {
		ls.Q += ls.R * dt
		ls.Load = ls.Q * ls.DPdV
		return
	}

	rampSpan := (p.High - p.Low) / p.OnRamp
	now := timestamp.Local(t1, timestamp.Normal, ls.TZ)
	skip := p.Weekdays&(1<<uint(now.Weekday)) == 0

	if ls.T2 == timestamp.Zero {
		hour := float64(now.Hour) + float64(now.Minute)/60 + float64(now.Second)/3600
		switch {
		case hour < p.OnTime:
			ls.Seg, ls.Q, ls.R = segOff, p.Low, 0
			dt = p.OnTime - hour
		case hour < p.OnTime+rampSpan:
			ls.Seg, ls.Q = segRampUp, p.Low
			ls.R = rampRate(p.OnRamp, skip)
			dt = p.OnTime + rampSpan - hour
		case hour < p.OffTime:
			ls.Seg, ls.R = segOn, 0
			ls.Q = levelFor(p, skip)
			dt = p.OffTime - hour
		case hour < p.OffTime+(p.Low-p.High)/p.OffRamp:
			ls.Seg = segRampDown
			ls.Q = levelFor(p, skip)
			ls.R = rampRate(p.OffRamp, skip)
			dt = p.OffTime + (p.Low-p.High)/p.OffRamp - hour
		default:
			ls.Seg, ls.Q, ls.R = segOff, p.Low, 0
			dt = 24 - hour + p.OnTime
		}
	} else {
		switch ls.Seg {
		case segOff:
			ls.Seg, ls.Q = segRampUp, p.Low
			ls.R = rampRate(p.OnRamp, skip)
			dt = rampSpan
		case segRampUp:
			ls.Seg, ls.R = segOn, 0
			ls.Q = levelFor(p, skip)
			dt = p.OffTime - p.OnTime - rampSpan
		case segOn:
			ls.Seg = segRampDown
			ls.Q = levelFor(p, skip)
			ls.R = rampRate(p.OffRamp, skip)
			dt = (p.Low - p.High) / p.OffRamp
		case segRampDown:
			ls.Seg, ls.Q, ls.R = segOff, p.Low, 0
			dt = 24 - p.OffTime + p.OnTime
		}
	}
	ls.T2 = t1 + timestamp.Timestamp(dt*3600)
	ls.Load = ls.Q * ls.DPdV
}

// levelFor returns the active-cycle queue level, pinned to Low on a
// weekday the shape is not scheduled to run.
func levelFor(p *ScheduledParams, skip bool) float64 {
	if skip {
		return p.Low
	}
	return p.High
}

// rampRate returns the configured ramp rate, or zero on a weekday the
// shape is not scheduled to run (a skipped day holds flat rather than
// ramping).
func rampRate(rate float64, skip bool) float64 {
	if skip {
		return 0
	}
	return rate
}

// Active reports whether this shape drives a load at all, matching the
// original's "shape && shape->type != MT_UNKNOWN" test (enduse.Driver).
func (ls *Loadshape) Active() bool { return ls.Kind != KindUnknown }

// CurrentLoad returns the shape's last computed Load (enduse.Driver).
func (ls *Loadshape) CurrentLoad() float64 { return ls.Load }

// NextEvent returns the shape's next scheduled event, or
// timestamp.Never if none is pending (enduse.Driver).
func (ls *Loadshape) NextEvent() timestamp.Timestamp {
	if ls.T2 > 0 {
		return ls.T2
	}
	return timestamp.Never
}
