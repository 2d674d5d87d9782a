package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/timestamp"
)

func setup(t *testing.T) (*class.Registry, *object.Store, *class.Class) {
	t.Helper()
	reg := class.NewRegistry()
	c, err := class.Register(reg, nil, "mod", "node", 8, class.PCBottomUp|class.PCPreTopDown).Build()
	require.NoError(t, err)
	store := object.NewStore()
	return reg, store, c
}

func TestStepVisitsEveryImplementedPassAndFoldsSoonest(t *testing.T) {
	reg, store, c := setup(t)
	a, _ := store.CreateObject(c, object.Invalid, 0)
	b, _ := store.CreateObject(c, object.Invalid, 0)

	visited := map[object.ID][]class.PassKind{}
	sync := func(o *object.Object, pass class.PassKind, tPrev, tNow timestamp.Timestamp) (Result, error) {
		visited[o.ID] = append(visited[o.ID], pass)
		if o == a {
			return Hard(100), nil
		}
		return Soft(500), nil
	}

	s := New(store, reg, sync, glog.NewNop())
	next, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, timestamp.Timestamp(100), next)
	assert.Equal(t, []class.PassKind{class.PreTopDown, class.BottomUp}, visited[a.ID])
	assert.Equal(t, []class.PassKind{class.PreTopDown, class.BottomUp}, visited[b.ID])
}

func TestStepSkipsObjectsWhoseClassDoesNotImplementThePass(t *testing.T) {
	reg := class.NewRegistry()
	c, err := class.Register(reg, nil, "mod", "leaf", 8, class.PCBottomUp).Build()
	require.NoError(t, err)
	store := object.NewStore()
	o, _ := store.CreateObject(c, object.Invalid, 0)

	calls := 0
	sync := func(obj *object.Object, pass class.PassKind, tPrev, tNow timestamp.Timestamp) (Result, error) {
		calls++
		assert.Equal(t, class.BottomUp, pass)
		return None(), nil
	}
	s := New(store, reg, sync, glog.NewNop())
	_, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	_ = o
}

func TestStepPropagatesFailure(t *testing.T) {
	reg, store, c := setup(t)
	store.CreateObject(c, object.Invalid, 0)

	sync := func(o *object.Object, pass class.PassKind, tPrev, tNow timestamp.Timestamp) (Result, error) {
		return Failure(assertErr), nil
	}
	s := New(store, reg, sync, glog.NewNop())
	_, err := s.Step()
	assert.ErrorIs(t, err, assertErr)
}

func TestRunStopsAtNever(t *testing.T) {
	reg, store, c := setup(t)
	store.CreateObject(c, object.Invalid, 0)

	n := 0
	sync := func(o *object.Object, pass class.PassKind, tPrev, tNow timestamp.Timestamp) (Result, error) {
		n++
		if n > 4 {
			return None(), nil
		}
		return Hard(timestamp.Timestamp(n)), nil
	}
	s := New(store, reg, sync, glog.NewNop())
	err := s.Run(timestamp.Timestamp(10))
	require.NoError(t, err)
	assert.Equal(t, timestamp.Never, s.T)
}

func TestProfileAccumulatesPerClass(t *testing.T) {
	reg, store, c := setup(t)
	store.CreateObject(c, object.Invalid, 0)

	sync := func(o *object.Object, pass class.PassKind, tPrev, tNow timestamp.Timestamp) (Result, error) {
		time.Sleep(time.Microsecond)
		return None(), nil
	}
	s := New(store, reg, sync, glog.NewNop())
	_, err := s.Step()
	require.NoError(t, err)
	p := s.Profile()["mod/node"]
	assert.Equal(t, int64(2), p.SyncCalls) // PreTopDown + BottomUp
	assert.Greater(t, p.SyncTime, time.Duration(0))
}

var assertErr = kernelerrTestSentinel{}

type kernelerrTestSentinel struct{}

func (kernelerrTestSentinel) Error() string { return "boom" }
