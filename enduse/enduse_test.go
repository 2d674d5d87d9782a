package enduse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/timestamp"
)

type fakeDriver struct {
	active bool
	load   float64
	next   timestamp.Timestamp
}

func (f *fakeDriver) Active() bool                     { return f.active }
func (f *fakeDriver) CurrentLoad() float64              { return f.load }
func (f *fakeDriver) NextEvent() timestamp.Timestamp    { return f.next }

func TestPretopdownIntegratesEnergyAndZeroesHeatgain(t *testing.T) {
	e := New()
	e.Init()
	e.Total.Re = 10
	e.Heatgain = 100

	e.Sync(class.PreTopDown, timestamp.Timestamp(3600))
	require.Equal(t, float64(0), e.Energy.Re) // t_last was TS_ZERO, so the first call only records the clock
	e.Total.Re = 10
	e.Heatgain = 100
	t2 := e.Sync(class.PreTopDown, timestamp.Timestamp(7200))
	assert.InDelta(t, 10.0, e.Energy.Re, 1e-9)
	assert.Equal(t, 0.0, e.Heatgain)
	assert.Equal(t, timestamp.Never, t2)
}

func TestBottomUpShapeDrivenElectricSplit(t *testing.T) {
	e := New()
	e.Init()
	e.VoltageFactor = 1
	e.PowerFraction = 0.5
	e.CurrentFraction = 0.3
	e.ImpedanceFraction = 0.2
	e.PowerFactor = 1
	e.Shape = &fakeDriver{active: true, load: 100, next: timestamp.Timestamp(500)}

	t2 := e.Sync(class.BottomUp, timestamp.Timestamp(1))
	assert.Equal(t, 100.0, e.Total.Re)
	assert.Equal(t, 0.0, e.Total.Im)
	assert.InDelta(t, 50.0, e.Power.Re, 1e-9)
	assert.InDelta(t, 30.0, e.Current.Re, 1e-9)
	assert.InDelta(t, 20.0, e.Admittance.Re, 1e-9)
	assert.InDelta(t, 100.0, e.Demand.Re, 1e-9)
	assert.InDelta(t, 100*1*btuPerKWh, e.Heatgain, 1e-6)
	assert.Equal(t, timestamp.Timestamp(500), t2)
}

func TestBottomUpHeatLoadShape(t *testing.T) {
	e := New()
	e.Init()
	e.Config = FlagHeatLoad
	e.HeatgainFraction = 0.8
	e.Shape = &fakeDriver{active: true, load: 50, next: timestamp.Never}

	e.Sync(class.BottomUp, timestamp.Timestamp(1))
	assert.InDelta(t, 50*0.8, e.Heatgain, 1e-9)
	assert.Equal(t, 0.0, e.Total.Re) // heat load never touches the electrical total
}

func TestBottomUpDirectZIPWithoutShape(t *testing.T) {
	e := New()
	e.Init()
	e.VoltageFactor = 1
	e.Power.Re = 1
	e.Current.Re = 2
	e.Admittance.Re = 3

	e.Sync(class.BottomUp, timestamp.Timestamp(1))
	assert.Equal(t, 6.0, e.Total.Re)
}

func TestDemandTracksPeak(t *testing.T) {
	e := New()
	e.Init()
	e.VoltageFactor = 1
	e.Power.Re = 10
	e.Sync(class.BottomUp, timestamp.Timestamp(1))
	assert.Equal(t, 10.0, e.Demand.Re)

	e.Power.Re = 2
	e.Sync(class.BottomUp, timestamp.Timestamp(2))
	assert.Equal(t, 10.0, e.Demand.Re) // demand holds the peak, does not fall back
}

func TestSyncAllReturnsEarliestAcrossEnduses(t *testing.T) {
	a := New()
	a.Init()
	a.Shape = &fakeDriver{active: true, next: timestamp.Timestamp(900)}
	b := New()
	b.Init()
	b.Shape = &fakeDriver{active: true, next: timestamp.Timestamp(300)}

	next, err := SyncAll(context.Background(), []*Enduse{a, b}, class.BottomUp, timestamp.Timestamp(1), 4)
	require.NoError(t, err)
	assert.Equal(t, timestamp.Timestamp(300), next)
}
