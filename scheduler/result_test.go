package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rob-gra/gridsim-core/timestamp"
)

func TestSignedRoundTrip(t *testing.T) {
	assert.Equal(t, timestamp.Timestamp(-100), Hard(100).Signed())
	assert.Equal(t, timestamp.Timestamp(100), Soft(100).Signed())
	assert.Equal(t, timestamp.Never, None().Signed())
	assert.Equal(t, timestamp.Never, Failure(nil).Signed())
}

func TestParseSigned(t *testing.T) {
	assert.Equal(t, Result{Kind: NextHard, At: 50}, ParseSigned(-50))
	assert.Equal(t, Result{Kind: NextSoft, At: 50}, ParseSigned(50))
	assert.Equal(t, Result{Kind: Indifferent}, ParseSigned(timestamp.Never))
	assert.Equal(t, Result{Kind: Indifferent}, ParseSigned(0))
}

func TestFoldResultHardBeatsSoftBeatsIndifferent(t *testing.T) {
	acc := None()
	acc = foldResult(acc, Soft(100))
	assert.Equal(t, NextSoft, acc.Kind)
	acc = foldResult(acc, Hard(200))
	assert.Equal(t, NextHard, acc.Kind)
	assert.Equal(t, timestamp.Timestamp(200), acc.At)
	acc = foldResult(acc, Soft(10))
	assert.Equal(t, NextHard, acc.Kind) // soft never overrides an existing hard
}

func TestFoldResultSoonestWins(t *testing.T) {
	acc := Hard(200)
	acc = foldResult(acc, Hard(50))
	assert.Equal(t, timestamp.Timestamp(50), acc.At)
}
