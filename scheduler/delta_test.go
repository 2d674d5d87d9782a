package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/gridsim-core/timestamp"
)

type fakeDeltaHandler struct {
	preupdated  int
	interupdate func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error)
	injections  []int
}

func (h *fakeDeltaHandler) Preupdate(t timestamp.Timestamp) error {
	h.preupdated++
	return nil
}

func (h *fakeDeltaHandler) Interupdate(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
	return h.interupdate(deltaTime, dt, iteration)
}

func (h *fakeDeltaHandler) CurrentInjection(iteration int) error {
	h.injections = append(h.injections, iteration)
	return nil
}

func TestRunDeltaConvergesAfterConsecutiveEvents(t *testing.T) {
	ticks := 0
	h := &fakeDeltaHandler{}
	h.interupdate = func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
		ticks++
		if ticks <= 3 {
			return SMDelta, nil
		}
		return SMEvent, nil
	}

	next, err := RunDelta(1000, timestamp.Medium, []DeltaHandler{h}, DeltaConfig{Step: time.Millisecond, MaxIter: 5, ConvergeFor: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, h.preupdated)
	assert.Greater(t, next, timestamp.Timestamp(1000))
}

func TestRunDeltaReentersSameTickOnDeltaIter(t *testing.T) {
	var iterations []int
	h := &fakeDeltaHandler{}
	calls := 0
	h.interupdate = func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
		calls++
		iterations = append(iterations, iteration)
		if iteration < 2 {
			return SMDeltaIter, nil
		}
		return SMEvent, nil
	}

	_, err := RunDelta(0, timestamp.High, []DeltaHandler{h}, DeltaConfig{Step: time.Millisecond, MaxIter: 10, ConvergeFor: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, iterations)
}

func TestRunDeltaAbortsOnSMError(t *testing.T) {
	h := &fakeDeltaHandler{}
	h.interupdate = func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
		return SMError, nil
	}
	_, err := RunDelta(0, timestamp.Normal, []DeltaHandler{h}, DeltaConfig{})
	assert.Error(t, err)
}

func TestRunDeltaBoundsIterationCount(t *testing.T) {
	h := &fakeDeltaHandler{}
	h.interupdate = func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
		return SMDeltaIter, nil
	}
	_, err := RunDelta(0, timestamp.Normal, []DeltaHandler{h}, DeltaConfig{Step: time.Millisecond, MaxIter: 3, ConvergeFor: 1})
	assert.Error(t, err)
}

func TestRunDeltaCallsCurrentInjectionEveryIteration(t *testing.T) {
	h := &fakeDeltaHandler{}
	n := 0
	h.interupdate = func(deltaTime, dt time.Duration, iteration int) (DeltaResult, error) {
		n++
		if n < 2 {
			return SMDeltaIter, nil
		}
		return SMEvent, nil
	}
	_, err := RunDelta(0, timestamp.Medium, []DeltaHandler{h}, DeltaConfig{Step: time.Millisecond, MaxIter: 5, ConvergeFor: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, h.injections)
}
