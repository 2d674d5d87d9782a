package loadshape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/timestamp"
)

func TestAnalogEnergyScale(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindAnalog,
		DPdV:     1,
		Schedule: &Schedule{Value: 2, Duration: 1, Fraction: 0.5, NextT: 100},
		Analog:   AnalogParams{Energy: 10},
	}
	require.NoError(t, ls.Init())
	t2, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, 2*10*0.5, ls.Load)
	assert.Equal(t, timestamp.Timestamp(100), t2)
}

func TestAnalogDirectValue(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindAnalog,
		DPdV:     1,
		Schedule: &Schedule{Value: 7, Duration: 1, NextT: 50},
	}
	require.NoError(t, ls.Init())
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, ls.Load)
}

func TestPulsedPowerTurnsOnAboveThreshold(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindPulsed,
		DPdV:     1,
		Schedule: &Schedule{Value: 1, Duration: 1, NextT: 1000},
		Pulsed: PulsedParams{
			Energy: 100, Scalar: 1, PulseType: PulsePower, PulseValue: 5,
		},
	}
	require.NoError(t, ls.Init())
	ls.R = 1 // rising while off
	ls.Q = 1 // at/over the rising threshold D[0]=1
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, StateOn, ls.S)
	assert.Equal(t, 5.0, ls.Load)
	assert.Less(t, ls.R, 0.0)
}

func TestPulsedTurnsOffBelowThreshold(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindPulsed,
		DPdV:     1,
		Schedule: &Schedule{Value: 1, Duration: 1, NextT: 1000},
		Pulsed: PulsedParams{
			Energy: 100, Scalar: 1, PulseType: PulsePower, PulseValue: 5,
		},
	}
	require.NoError(t, ls.Init())
	ls.Q = 0
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, StateOff, ls.S)
	assert.Equal(t, 0.0, ls.Load)
	assert.Greater(t, ls.R, 0.0)
}

func TestQueuedUsesExponentialDecayWhenOff(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindQueued,
		DPdV:     1,
		Log:      glog.NewNop(),
		Schedule: &Schedule{Value: 1, Duration: 1, NextT: 1000},
		Queued: QueuedParams{
			Energy: 10, Scalar: 1, PulseType: PulsePower, PulseValue: 2,
			QOn: 1, QOff: 0,
		},
	}
	require.NoError(t, ls.Init())
	ls.Q = 0 // below D[StateOn]=1, triggers the off branch
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, StateOff, ls.S)
	assert.Greater(t, ls.R, 0.0)
}

func TestQueuedInitRejectsBadThresholds(t *testing.T) {
	ls := &Loadshape{
		Kind:   KindQueued,
		Queued: QueuedParams{QOn: 0, QOff: 1},
	}
	assert.Error(t, ls.Init())
}

func TestScheduledRampsFromOffToOn(t *testing.T) {
	ls := &Loadshape{
		Kind: KindScheduled,
		DPdV: 1,
		Scheduled: ScheduledParams{
			Low: 0, High: 10, OnRamp: 5, OffRamp: -5,
		},
	}
	require.NoError(t, ls.Init())
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, segRampUp, ls.Seg)
}

// weekdaysMonToFri is the bit 1 (Monday) through bit 5 (Friday) mask.
const weekdaysMonToFri = 0b0111110

func monday(hour, minute int) timestamp.Timestamp {
	return timestamp.MkTime(timestamp.DateTime{Year: 2023, Month: 1, Day: 2, Hour: hour, Minute: minute}, timestamp.Normal, nil)
}

func saturday(hour, minute int) timestamp.Timestamp {
	return timestamp.MkTime(timestamp.DateTime{Year: 2023, Month: 1, Day: 7, Hour: hour, Minute: minute}, timestamp.Normal, nil)
}

// TestScheduledTrapezoidMatchesHourAndWeekdayGate reproduces spec.md §8's
// scheduled loadshape trapezoid vector: low=0, high=1, on_time=08,
// off_time=16, on_ramp=1, off_ramp=-1, weekdays=Mon-Fri.
func TestScheduledTrapezoidMatchesHourAndWeekdayGate(t *testing.T) {
	at := func(ts timestamp.Timestamp) float64 {
		ls := &Loadshape{
			Kind: KindScheduled,
			DPdV: 1,
			Scheduled: ScheduledParams{
				Low: 0, High: 1,
				OnTime: 8, OffTime: 16,
				OnRamp: 1, OffRamp: -1,
				Weekdays: weekdaysMonToFri,
			},
		}
		require.NoError(t, ls.Init())
		_, err := ls.Sync(ts)
		require.NoError(t, err)
		return ls.Q
	}

	assert.Equal(t, 0.0, at(monday(7, 59)))
	assert.Equal(t, 1.0, at(monday(9, 0)))
	assert.Equal(t, 1.0, at(monday(15, 0)))
	assert.Equal(t, 0.0, at(monday(17, 0)))
	assert.Equal(t, 0.0, at(saturday(12, 0)))
}

func TestSyncAllReturnsEarliestNextEvent(t *testing.T) {
	a := &Loadshape{Kind: KindAnalog, DPdV: 1, Schedule: &Schedule{Value: 1, Duration: 1, NextT: 500}}
	b := &Loadshape{Kind: KindAnalog, DPdV: 1, Schedule: &Schedule{Value: 1, Duration: 1, NextT: 200}}
	require.NoError(t, a.Init())
	require.NoError(t, b.Init())

	next, err := SyncAll(context.Background(), []*Loadshape{a, b}, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, timestamp.Timestamp(200), next)
}

func TestScheduleInactiveZeroesLoad(t *testing.T) {
	ls := &Loadshape{
		Kind:     KindAnalog,
		DPdV:     1,
		Schedule: &Schedule{Value: 5, Duration: 0, NextT: 300},
	}
	require.NoError(t, ls.Init())
	_, err := ls.Sync(1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ls.Load)
}
