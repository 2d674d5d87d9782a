package timestamp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripEpoch(t *testing.T) {
	s := String(Zero, Normal, nil, ISO)
	assert.Equal(t, "1970-01-01 00:00:00 GMT", s)
}

func TestRoundTripKnownInstant(t *testing.T) {
	s := String(Timestamp(1234567890), Normal, nil, ISO)
	assert.Equal(t, "2009-02-13 23:31:30 GMT", s)
}

func TestParseRoundTripAllFormats(t *testing.T) {
	ts := Timestamp(1234567890)
	for _, f := range []Format{ISO, US, EU} {
		s := String(ts, Normal, nil, f)
		require.NotEmpty(t, s)
		parsed := Parse(s, Normal, nil)
		assert.Equal(t, ts, parsed, "format %v round-trip", f)
	}
}

func TestShorthand(t *testing.T) {
	assert.Equal(t, Timestamp(123), Parse("123s", Normal, nil))
	assert.Equal(t, Timestamp(4*3600), Parse("4h", Normal, nil))
	assert.Equal(t, Timestamp(7*86400), Parse("7d", Normal, nil))
	assert.Equal(t, Never, Parse("NEVER", Normal, nil))
	assert.Equal(t, Zero, Parse("NOW", Normal, nil))
}

func TestParseFailureReturnsNever(t *testing.T) {
	assert.Equal(t, Never, Parse("not a time", Normal, nil))
	assert.Equal(t, DateTime{}, ParseDateTime("not a time", Normal, nil))
}

func TestUSDSTBoundaries2023(t *testing.T) {
	tz := DefaultUSEastern()
	cases := []struct {
		ts   string
		want bool
	}{
		{"2023-03-12 06:59:59", false},
		{"2023-03-12 07:00:00", true},
		{"2023-11-05 05:59:59", true},
		{"2023-11-05 06:00:00", false},
	}
	for _, c := range cases {
		t.Run(c.ts, func(t *testing.T) {
			dt, ok := parseCalendar(c.ts)
			require.True(t, ok)
			sec := composeUTC(dt)
			assert.Equal(t, c.want, tz.IsDST(sec))
		})
	}
}

func TestAbsAndEarliest(t *testing.T) {
	assert.Equal(t, Timestamp(5), Abs(Timestamp(-5)))
	assert.Equal(t, Invalid, Abs(Invalid))
	assert.Equal(t, Timestamp(3), Earliest(Timestamp(10), Timestamp(-3), Never))
}

func TestResolutionTable(t *testing.T) {
	cases := []struct {
		r         Resolution
		scale     int
		perSecond int64
	}{
		{Normal, 0, 1},
		{Medium, -3, 1e3},
		{High, -6, 1e6},
		{VeryHigh, -9, 1e9},
	}
	for _, c := range cases {
		assert.Equal(t, c.scale, c.r.Scale())
		assert.Equal(t, c.perSecond, c.r.PerSecond())
	}
}

func TestLoadTZInfo(t *testing.T) {
	data := `US/Eastern	EST5EDT

[2023]
EST5EDT,M3.2.0/2,M11.1.0/2
`
	locales, err := LoadTZInfo(strings.NewReader(data))
	require.NoError(t, err)
	sp, ok := locales["US/Eastern"]
	require.True(t, ok)
	dt, _ := parseCalendar("2023-03-12 07:00:00")
	assert.True(t, sp.IsDST(composeUTC(dt)))
}
