package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/timestamp"
)

func testClass(t *testing.T, size uintptr) *class.Class {
	t.Helper()
	reg := class.NewRegistry()
	c, err := class.Register(reg, nil, "mod", "Node", size, 0).Build()
	require.NoError(t, err)
	return c
}

func TestCreateObjectAssignsMonotonicIDs(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	a, err := s.CreateObject(c, Invalid, 0)
	require.NoError(t, err)
	b, err := s.CreateObject(c, Invalid, 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Greater(t, int(b.ID), int(a.ID))
}

func TestCreateObjectRankFollowsParent(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	parent, err := s.CreateObject(c, Invalid, 5)
	require.NoError(t, err)
	child, err := s.CreateObject(c, parent.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, child.Rank)

	grandchild, err := s.CreateObject(c, child.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, grandchild.Rank, "an explicit higher rank request is kept, not overridden downward")
}

func TestCreateObjectUnknownParentFails(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	_, err := s.CreateObject(c, ID(999), 0)
	require.Error(t, err)
}

func TestSetNameRejectsDuplicate(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	a, _ := s.CreateObject(c, Invalid, 0)
	b, _ := s.CreateObject(c, Invalid, 0)

	require.NoError(t, s.SetName(a, "meter1"))
	err := s.SetName(b, "meter1")
	require.Error(t, err)

	found, ok := s.ByName("meter1")
	assert.True(t, ok)
	assert.Equal(t, a, found)
}

func TestInService(t *testing.T) {
	o := &Object{InSvc: timestamp.Timestamp(100), OutSvc: timestamp.Timestamp(200)}
	assert.False(t, o.InService(99))
	assert.True(t, o.InService(100))
	assert.True(t, o.InService(199))
	assert.False(t, o.InService(200))
}

func TestForEachPassVisitsInRankOrder(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	top, _ := s.CreateObject(c, Invalid, 0)
	mid, _ := s.CreateObject(c, top.ID, 0)
	leaf, _ := s.CreateObject(c, mid.ID, 0)

	var visited []ID
	err := s.ForEachPass(func(o *Object) error {
		visited = append(visited, o.ID)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, visited, 3)
	assert.Equal(t, []ID{top.ID, mid.ID, leaf.ID}, visited)

	var topDown []ID
	err = s.ForEachPassTopDown(func(o *Object) error {
		topDown = append(topDown, o.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []ID{leaf.ID, mid.ID, top.ID}, topDown)
}

func TestLockUnlockSetsFlag(t *testing.T) {
	s := NewStore()
	c := testClass(t, 8)
	o, _ := s.CreateObject(c, Invalid, 0)

	assert.False(t, o.Locked())
	s.Lock(o)
	assert.True(t, o.Locked())
	s.Unlock(o)
	assert.False(t, o.Locked())
}
