package find

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
)

func setup(t *testing.T) (*class.Registry, *object.Store, *class.Class) {
	t.Helper()
	reg := class.NewRegistry()
	c, err := class.Register(reg, nil, "mod", "meter", 16, 0).
		Property("power", property.Double, 0).
		Build()
	require.NoError(t, err)
	store := object.NewStore()
	return reg, store, c
}

func TestCompileAndRunByID(t *testing.T) {
	reg, store, c := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 0)

	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile("id=" + strconv.FormatInt(int64(b.ID), 10))
	require.NoError(t, err)

	set, err := prog.Run(store)
	require.NoError(t, err)
	assert.True(t, set.Contains(b.ID))
	assert.False(t, set.Contains(a.ID))
}

func TestCompileClassAndRank(t *testing.T) {
	reg, store, c := setup(t)
	top, _ := store.CreateObject(c, object.Invalid, 0)
	_, _ = store.CreateObject(c, top.ID, 0)

	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile("class=meter and rank=0")
	require.NoError(t, err)

	set, err := prog.Run(store)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains(top.ID))
}

func TestCompileOrJoinsClauses(t *testing.T) {
	reg, store, c := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 1)

	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile("rank=0 or rank=1")
	require.NoError(t, err)

	set, err := prog.Run(store)
	require.NoError(t, err)
	assert.True(t, set.Contains(a.ID))
	assert.True(t, set.Contains(b.ID))
}

func TestCompileUnknownClassFails(t *testing.T) {
	reg, _, _ := setup(t)
	comp := &Compiler{Classes: reg}
	_, err := comp.Compile("class=nonexistent")
	require.Error(t, err)
}

func TestCompileLatitudeDMS(t *testing.T) {
	reg, store, _ := setup(t)
	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile(`latitude=45N30'0"`)
	require.NoError(t, err)
	require.Len(t, prog.Clauses, 1)
	require.Len(t, prog.Clauses[0], 1)
	assert.InDelta(t, 45.5, prog.Clauses[0][0].RealVal, 1e-9)
}

func TestCompileLongitudeWestIsNegative(t *testing.T) {
	reg, store, _ := setup(t)
	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile(`longitude=122W0'0"`)
	require.NoError(t, err)
	assert.InDelta(t, -122.0, prog.Clauses[0][0].RealVal, 1e-9)
}

func TestPropertyPredicateComparesAsString(t *testing.T) {
	reg, store, c := setup(t)
	o, _ := store.CreateObject(c, object.Invalid, 0)
	d := c.FindProperty("power", nil)
	require.NotNil(t, d)
	acc, err := class.NewAccessor(d, c.Size)
	require.NoError(t, err)
	acc.SetFloat64(o.Body, 42)

	comp := &Compiler{Classes: reg, Objects: store}
	prog, err := comp.Compile("power=42")
	require.NoError(t, err)
	set, err := prog.Run(store)
	require.NoError(t, err)
	assert.True(t, set.Contains(o.ID))
	assert.False(t, prog.ConstFlags&CFConstant != 0, "a property predicate must not be flagged constant")
}

func TestIsAWalksParentChain(t *testing.T) {
	reg := class.NewRegistry()
	base, err := class.Register(reg, nil, "mod", "base", 8, 0).Build()
	require.NoError(t, err)
	derived, err := class.Register(reg, nil, "mod", "derived", 8, 0).Inherit("mod", "base").Build()
	require.NoError(t, err)

	assert.True(t, isA(derived, "base"))
	assert.True(t, isA(derived, "derived"))
	assert.False(t, isA(base, "derived"))
}

func TestSetIDsAreSorted(t *testing.T) {
	s := NewSet()
	s.Add(5)
	s.Add(1)
	s.Add(3)
	assert.Equal(t, []object.ID{1, 3, 5}, s.IDs())
}
