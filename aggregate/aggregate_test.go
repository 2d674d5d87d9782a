package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

func setup(t *testing.T) (*class.Registry, *object.Store, *class.Class, *unit.Table) {
	t.Helper()
	reg := class.NewRegistry()
	units := unit.NewTable()
	c, err := class.Register(reg, nil, "mod", "meter", 24, 0).
		Property("power", property.Double, 0).
		Units(unit.Unit{Name: "W", Family: "power", Scale: 1}).
		Property("demand", property.Complex, 8).
		Build()
	require.NoError(t, err)
	store := object.NewStore()
	return reg, store, c, units
}

func setPower(t *testing.T, c *class.Class, o *object.Object, v float64) {
	t.Helper()
	d := c.FindProperty("power", nil)
	require.NotNil(t, d)
	acc, err := class.NewAccessor(d, c.Size)
	require.NoError(t, err)
	acc.SetFloat64(o.Body, v)
}

func setDemand(t *testing.T, c *class.Class, o *object.Object, v property.Complex) {
	t.Helper()
	d := c.FindProperty("demand", nil)
	require.NotNil(t, d)
	acc, err := class.NewAccessor(d, c.Size)
	require.NoError(t, err)
	acc.SetComplex(o.Body, v)
}

func TestCompileSumAndMean(t *testing.T) {
	reg, store, c, units := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, a, 10)
	setPower(t, c, b, 30)

	sum, err := Compile(reg, store, units, "sum(power)", "class=meter")
	require.NoError(t, err)
	v, err := sum.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 40.0, v)

	mean, err := Compile(reg, store, units, "mean(power)", "class=meter")
	require.NoError(t, err)
	v, err = mean.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestCompileMinMaxCount(t *testing.T) {
	reg, store, c, units := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, a, 5)
	setPower(t, c, b, -2)

	min, err := Compile(reg, store, units, "min(power)", "class=meter")
	require.NoError(t, err)
	v, err := min.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, -2.0, v)

	max, err := Compile(reg, store, units, "max(power)", "class=meter")
	require.NoError(t, err)
	v, err = max.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	count, err := Compile(reg, store, units, "count(power)", "class=meter")
	require.NoError(t, err)
	v, err = count.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestAbsFlagSpelling(t *testing.T) {
	reg, store, c, units := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, a, -7)

	agg, err := Compile(reg, store, units, "sum|power|", "class=meter")
	require.NoError(t, err)
	v, err := agg.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestStdAndVarMatchWelford(t *testing.T) {
	reg, store, c, units := setup(t)
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, v := range vals {
		o, _ := store.CreateObject(c, object.Invalid, 0)
		setPower(t, c, o, v)
	}

	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var sumSq float64
	for _, v := range vals {
		sumSq += (v - mean) * (v - mean)
	}
	wantVar := sumSq / float64(len(vals)-1)
	wantStd := math.Sqrt(wantVar)

	std, err := Compile(reg, store, units, "std(power)", "class=meter")
	require.NoError(t, err)
	gotStd, err := std.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.InDelta(t, wantStd, gotStd, 1e-9)

	vr, err := Compile(reg, store, units, "var(power)", "class=meter")
	require.NoError(t, err)
	gotVar, err := vr.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.InDelta(t, wantVar, gotVar, 1e-9)
}

func TestComplexPartSelection(t *testing.T) {
	reg, store, c, units := setup(t)
	o, _ := store.CreateObject(c, object.Invalid, 0)
	setDemand(t, c, o, property.Complex{Re: 3, Im: 4})

	mag, err := Compile(reg, store, units, "sum(demand.mag)", "class=meter")
	require.NoError(t, err)
	v, err := mag.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-9)

	real, err := Compile(reg, store, units, "sum(demand.real)", "class=meter")
	require.NoError(t, err)
	v, err = real.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestDoubleCannotHavePart(t *testing.T) {
	reg, store, c, units := setup(t)
	_, _ = store.CreateObject(c, object.Invalid, 0)
	_, err := Compile(reg, store, units, "sum(power.real)", "class=meter")
	require.Error(t, err)
}

func TestComplexRequiresPart(t *testing.T) {
	reg, store, c, units := setup(t)
	_, _ = store.CreateObject(c, object.Invalid, 0)
	_, err := Compile(reg, store, units, "sum(demand)", "class=meter")
	require.Error(t, err)
}

func TestGroupExpressionMustPinClass(t *testing.T) {
	reg, store, _, units := setup(t)
	_, err := Compile(reg, store, units, "sum(power)", "rank=0")
	require.Error(t, err)
}

func TestEmptyGroupFails(t *testing.T) {
	reg, store, _, units := setup(t)
	_, err := Compile(reg, store, units, "sum(power)", "class=meter")
	require.Error(t, err)
}

func TestUnitConversion(t *testing.T) {
	reg, store, c, units := setup(t)
	o, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, o, 2000)

	agg, err := Compile(reg, store, units, "sum(power[kW])", "class=meter")
	require.NoError(t, err)
	v, err := agg.Value(timestamp.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestSkewAndKurtosisAreNotImplemented(t *testing.T) {
	reg, store, c, units := setup(t)
	o, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, o, 1)

	skew, err := Compile(reg, store, units, "skew(power)", "class=meter")
	require.NoError(t, err)
	_, err = skew.Value(timestamp.Zero)
	require.Error(t, err)

	kur, err := Compile(reg, store, units, "kur(power)", "class=meter")
	require.NoError(t, err)
	_, err = kur.Value(timestamp.Zero)
	require.Error(t, err)
}

func TestOutOfServiceObjectsAreSkipped(t *testing.T) {
	reg, store, c, units := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 0)
	setPower(t, c, a, 10)
	setPower(t, c, b, 1000)
	b.OutSvc = timestamp.Timestamp(1)

	agg, err := Compile(reg, store, units, "sum(power)", "class=meter")
	require.NoError(t, err)
	v, err := agg.Value(timestamp.Timestamp(5))
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}
