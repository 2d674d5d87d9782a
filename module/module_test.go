package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/unit"
)

func newCallbacks(t *testing.T) *Callbacks {
	t.Helper()
	return NewCallbacks("testmod", class.NewRegistry(), object.NewStore(), unit.NewTable(), glog.NewNop())
}

func TestRegisterClassAndCreateObject(t *testing.T) {
	cb := newCallbacks(t)
	c, err := cb.RegisterClass("meter", 8, class.PCBottomUp).
		Property("power", property.Double, 0).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "testmod", c.Module)

	o, err := cb.CreateObject(c, object.Invalid, 0)
	require.NoError(t, err)
	assert.Equal(t, c, o.Class)
}

func TestFindRunsAGroupExpressionOverTheStore(t *testing.T) {
	cb := newCallbacks(t)
	c, err := cb.RegisterClass("meter", 8, class.PCBottomUp).Build()
	require.NoError(t, err)
	o, err := cb.CreateObject(c, object.Invalid, 3)
	require.NoError(t, err)

	set, err := cb.Find("class=meter AND rank=3")
	require.NoError(t, err)
	assert.True(t, set.Contains(o.ID))
}

func TestGetFunctionLooksUpAPublishedFunction(t *testing.T) {
	cb := newCallbacks(t)
	called := false
	fn := func(obj interface{}, args ...interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}
	c, err := cb.RegisterClass("inverter", 8, class.PCBottomUp).
		Function("swing_swapper", fn).
		Build()
	require.NoError(t, err)

	got, ok := GetFunction(c, "swing_swapper")
	require.True(t, ok)
	_, _ = got(nil)
	assert.True(t, called)

	_, ok = GetFunction(c, "no_such_function")
	assert.False(t, ok)
}
