package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/enduse"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/loadshape"
	"github.com/rob-gra/gridsim-core/module"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
)

type fakeComponent struct {
	initCalled, checkCalled bool
	class                   *class.Class
	checkErr                error
}

func (f *fakeComponent) Init(cb *module.Callbacks, argv []string) ([]*class.Class, error) {
	f.initCalled = true
	c, err := cb.RegisterClass("node", 8, class.PCBottomUp).
		Property("power", property.Double, 0).
		Build()
	if err != nil {
		return nil, err
	}
	f.class = c
	return []*class.Class{c}, nil
}

func (f *fakeComponent) Check() error {
	f.checkCalled = true
	return f.checkErr
}

func TestLoadComponentRegistersItsClasses(t *testing.T) {
	e := New(glog.NewNop())
	fc := &fakeComponent{}
	require.NoError(t, e.LoadComponent("fakemod", fc, nil))
	assert.True(t, fc.initCalled)
	assert.True(t, fc.checkCalled)
	assert.Len(t, e.Classes.All(), 1)
}

func TestDispatchSyncsAttachedLoadshapeDuringBottomUp(t *testing.T) {
	e := New(glog.NewNop())
	fc := &fakeComponent{}
	require.NoError(t, e.LoadComponent("fakemod", fc, nil))

	o, err := e.Objects.CreateObject(fc.class, object.Invalid, 0)
	require.NoError(t, err)

	ls := &loadshape.Loadshape{
		Kind:     loadshape.KindAnalog,
		Analog:   loadshape.AnalogParams{Power: 5},
		Schedule: &loadshape.Schedule{Duration: 1, Value: 1, NextT: 3600},
	}
	require.NoError(t, ls.Init())
	e.AttachLoadshape(o, "power", ls)

	e.Scheduler.T = 10
	_, err = e.Scheduler.Step()
	require.NoError(t, err)
	assert.Greater(t, ls.CurrentLoad(), 0.0)
}

func TestAggregateSourcesResolveAttachedShapesAndEnduses(t *testing.T) {
	e := New(glog.NewNop())
	fc := &fakeComponent{}
	require.NoError(t, e.LoadComponent("fakemod", fc, nil))
	o, err := e.Objects.CreateObject(fc.class, object.Invalid, 0)
	require.NoError(t, err)

	ls := &loadshape.Loadshape{Kind: loadshape.KindAnalog, Analog: loadshape.AnalogParams{Power: 10}}
	require.NoError(t, ls.Init())
	e.AttachLoadshape(o, "shape", ls)

	eu := enduse.New()
	eu.Total = property.Complex{Re: 3, Im: 4}
	e.AttachEnduse(o, "load", eu)

	d := &property.Descriptor{Name: "shape", Type: property.Loadshape}
	v, err := e.Double(o, d)
	require.NoError(t, err)
	assert.Equal(t, ls.CurrentLoad(), v)

	cd := &property.Descriptor{Name: "load", Type: property.Enduse}
	c, err := e.Complex(o, cd)
	require.NoError(t, err)
	assert.Equal(t, property.Complex{Re: 3, Im: 4}, c)
}
