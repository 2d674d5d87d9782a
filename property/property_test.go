package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/unit"
)

func TestTypeWidths(t *testing.T) {
	assert.Equal(t, 8, Double.Width())
	assert.Equal(t, 16, Complex.Width())
	assert.Equal(t, -1, Delegated.Width())
	assert.True(t, Double.HasUnit())
	assert.False(t, Int32.HasUnit())
}

func TestDoubleRoundTrip(t *testing.T) {
	d := &Descriptor{Name: "x", Type: Double}
	c, err := Lookup(d)
	require.NoError(t, err)
	v, err := c.FromString(d, "3.5")
	require.NoError(t, err)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "3.5", s)
}

func TestDoubleUnitConversion(t *testing.T) {
	tbl := unit.NewTable()
	kw, err := tbl.Lookup("kW")
	require.NoError(t, err)
	d := &Descriptor{Name: "power", Type: Double, Unit: kw}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "1000 W")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v.(float64), 1e-9)
}

func TestComplexRectangular(t *testing.T) {
	d := &Descriptor{Name: "z", Type: Complex}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "3+4i")
	require.NoError(t, err)
	cv := v.(Complex)
	assert.InDelta(t, 3, cv.Re, 1e-9)
	assert.InDelta(t, 4, cv.Im, 1e-9)
	assert.InDelta(t, 5, cv.Mag(), 1e-9)
	s, err := c.ToString(d, cv, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "3+4i", s)
}

func TestComplexPolarDegrees(t *testing.T) {
	d := &Descriptor{Name: "z", Type: Complex}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "5 90 d")
	require.NoError(t, err)
	cv := v.(Complex)
	assert.InDelta(t, 0, cv.Re, 1e-9)
	assert.InDelta(t, 5, cv.Im, 1e-9)
}

func TestEnumerationKeywordRoundTrip(t *testing.T) {
	d := &Descriptor{
		Name: "state", Type: Enumeration,
		Keywords: []Keyword{{"OFF", 0}, {"ON", 1}},
	}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "ON")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "ON", s)
}

func TestEnumerationHexAndDecimalFallback(t *testing.T) {
	d := &Descriptor{Name: "state", Type: Enumeration}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(16), v)
	v, err = c.FromString(d, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestSetPipeDelimited(t *testing.T) {
	d := &Descriptor{
		Name: "flags", Type: Set,
		Keywords: []Keyword{{"A", 1}, {"B", 2}, {"C", 4}},
	}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "A|C")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "A|C", s)
}

func TestSetCharsetMode(t *testing.T) {
	d := &Descriptor{
		Name: "flags", Type: Set, Flags: FlagCharset,
		Keywords: []Keyword{{"A", 1}, {"B", 2}, {"C", 4}},
	}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "AC")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "AC", s)
}

func TestSetUnknownCharsetMemberErrors(t *testing.T) {
	d := &Descriptor{
		Name: "flags", Type: Set, Flags: FlagCharset,
		Keywords: []Keyword{{"A", 1}},
	}
	c, _ := Lookup(d)
	_, err := c.FromString(d, "Z")
	require.Error(t, err)
}

func TestBoolRoundTrip(t *testing.T) {
	d := &Descriptor{Name: "enabled", Type: Bool}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", s)
}

func TestCharNFixedCapacityRejectsOverflow(t *testing.T) {
	d := &Descriptor{Name: "tag", Type: Char8}
	c, _ := Lookup(d)
	_, err := c.FromString(d, "exceeds-eight-bytes")
	require.Error(t, err)
	v, err := c.FromString(d, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDelegatedWithoutCodecErrors(t *testing.T) {
	d := &Descriptor{Name: "custom", Type: Delegated}
	_, err := Lookup(d)
	require.Error(t, err)
}

func TestNotifyBeforeVeto(t *testing.T) {
	called := false
	d := &Descriptor{
		Name: "x", Type: Double,
		Flags: FlagNotify | FlagNotifyOverride,
		Notify: func(obj interface{}, newValue string) bool {
			called = true
			return false
		},
	}
	ok := NotifyBefore(d, nil, "1")
	assert.True(t, called)
	assert.False(t, ok)
}

func TestNotifyBeforeAdvisoryWithoutOverride(t *testing.T) {
	d := &Descriptor{
		Name: "x", Type: Double,
		Flags:  FlagNotify,
		Notify: func(obj interface{}, newValue string) bool { return false },
	}
	ok := NotifyBefore(d, nil, "1")
	assert.True(t, ok, "without NotifyOverride the callback cannot veto")
}

func TestDoubleArrayRoundTrip(t *testing.T) {
	d := &Descriptor{Name: "samples", Type: DoubleArray}
	c, _ := Lookup(d)
	v, err := c.FromString(d, "1,2,3.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5}, v)
	s, err := c.ToString(d, v, unit.None)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3.5", s)
}
