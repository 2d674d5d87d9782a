package unit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertWithinFamily(t *testing.T) {
	tbl := NewTable()
	kW, err := tbl.Lookup("kW")
	require.NoError(t, err)
	W, err := tbl.Lookup("W")
	require.NoError(t, err)

	scale, err := Convert(kW, W)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, scale)
}

func TestConvertRejectsMismatchedFamilies(t *testing.T) {
	tbl := NewTable()
	kW, _ := tbl.Lookup("kW")
	V, _ := tbl.Lookup("V")
	_, err := Convert(kW, V)
	assert.Error(t, err)
}

func TestConvertUnitlessOnlyToUnitless(t *testing.T) {
	tbl := NewTable()
	W, _ := tbl.Lookup("W")

	scale, err := Convert(None, None)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scale)

	_, err = Convert(None, W)
	assert.Error(t, err)
}

func TestLoadRegistersUnitfileDefinitions(t *testing.T) {
	tbl := NewTable()
	src := "# comment\nfurlong length 201.168\n\nchain length 20.1168\n"
	require.NoError(t, tbl.Load(strings.NewReader(src)))

	furlong, err := tbl.Lookup("furlong")
	require.NoError(t, err)
	chain, err := tbl.Lookup("chain")
	require.NoError(t, err)

	scale, err := Convert(furlong, chain)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, scale, 1e-9)
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	tbl := NewTable()
	err := tbl.Load(strings.NewReader("furlong length notanumber\n"))
	assert.Error(t, err)
}

func TestParseSplitsValueAndUnit(t *testing.T) {
	tbl := NewTable()
	v, u, err := Parse("12.5 kW", tbl)
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)
	assert.Equal(t, "kW", u.Name)

	v, u, err = Parse("42", tbl)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
	assert.True(t, u.IsNone())
}

func TestLookupUnknownUnitFails(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Lookup("furlong")
	assert.Error(t, err)
}
