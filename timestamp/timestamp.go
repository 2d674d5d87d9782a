// Package timestamp implements the kernel's clock: an integer count of
// ticks since 1970-01-01 00:00:00 UTC at a configurable resolution, plus
// calendar, timezone/DST, and string-I/O support (spec §4.1).
package timestamp

import (
	"time"

	"github.com/rob-gra/gridsim-core/kernelerr"
)

// Timestamp is the global simulated clock unit: an integer number of
// 1/Resolution.PerSecond() ticks since the Unix epoch. A negative value
// (other than the Invalid sentinel) carries the scheduler's sign
// convention: scheduler.ParseSigned reads it as a hard event and a
// positive value as a soft hint. Its absolute value is the comparable
// instant; see Abs.
type Timestamp int64

// Sentinels, per spec §4.1.
const (
	// Zero is the Unix epoch, 1970-01-01 00:00:00 UTC.
	Zero Timestamp = 0
	// Never means "no further event is scheduled."
	Never Timestamp = Timestamp(^uint64(0) >> 2) // max/2 at int64 width, always representable
	// Invalid marks a failed conversion.
	Invalid Timestamp = -1
)

// Resolution selects the kernel's timescale, per spec §6's frequency table.
type Resolution int

const (
	Normal   Resolution = iota // 1 s
	Medium                     // 1 ms
	High                       // 1 µs
	VeryHigh                   // 1 ns
)

// Scale returns the power-of-ten exponent TS_SCALE for this resolution.
func (r Resolution) Scale() int {
	switch r {
	case Medium:
		return -3
	case High:
		return -6
	case VeryHigh:
		return -9
	default:
		return 0
	}
}

// PerSecond returns TS_SECOND: the number of ticks in one second.
func (r Resolution) PerSecond() int64 {
	switch r {
	case Medium:
		return 1e3
	case High:
		return 1e6
	case VeryHigh:
		return 1e9
	default:
		return 1
	}
}

// Step returns TS_RESOLUTION: the duration, in seconds, of one tick.
func (r Resolution) Step() float64 {
	return 1.0 / float64(r.PerSecond())
}

// maxSupportedSeconds is the ≈3000 CE ceiling (spec §4.1 "Valid range"), expressed
// in normal-resolution seconds (TS_MAX in the original). Scaled per
// Resolution when validating.
const maxSupportedSeconds int64 = 32482080000

// Abs normalizes a soft/hard timestamp for comparison: the hard-event
// magnitude regardless of the sign convention (spec §4.1, §4.9).
func Abs(t Timestamp) Timestamp {
	if t < 0 && t != Invalid {
		return -t
	}
	return t
}

// Earliest folds a set of scheduler-returned next-event timestamps into
// the smallest hard instant, mirroring the original's earliest_timestamp
// variadic helper and spec §4.9's "t_next <- earliest" fold. Never values
// are ignored; Invalid values are never passed in by a correct caller.
func Earliest(ts ...Timestamp) Timestamp {
	best := Never
	for _, t := range ts {
		if t == Never || t == Invalid {
			continue
		}
		if a := Abs(t); a < best {
			best = a
		}
	}
	return best
}

// InRange reports whether t falls within [1970-01-01, ~3000 CE) at the
// given resolution.
func InRange(t Timestamp, res Resolution) bool {
	if t == Invalid {
		return false
	}
	a := int64(Abs(t))
	return a >= 0 && a < maxSupportedSeconds*res.PerSecond()
}

// ToTime converts a Timestamp at the given resolution to a UTC time.Time.
// Returns the zero time.Time if t is out of the supported range.
func ToTime(t Timestamp, res Resolution) time.Time {
	if !InRange(t, res) {
		return time.Time{}
	}
	a := int64(Abs(t))
	sec := a / res.PerSecond()
	rem := a % res.PerSecond()
	nsec := rem * (1_000_000_000 / res.PerSecond())
	return time.Unix(sec, nsec).UTC()
}

// FromTime converts a UTC time.Time to a Timestamp at the given
// resolution. Returns Invalid if tm predates the epoch or exceeds the
// supported range.
func FromTime(tm time.Time, res Resolution) Timestamp {
	tm = tm.UTC()
	sec := tm.Unix()
	if sec < 0 {
		return Invalid
	}
	ticks := sec*res.PerSecond() + int64(tm.Nanosecond())/(1_000_000_000/res.PerSecond())
	t := Timestamp(ticks)
	if !InRange(t, res) {
		return Invalid
	}
	return t
}

// Validate returns kernelerr.ErrOutOfRange if t cannot be represented at
// the given resolution.
func Validate(t Timestamp, res Resolution) error {
	if !InRange(t, res) {
		return kernelerr.Wrapf(kernelerr.ErrOutOfRange, "timestamp %d out of supported range", t)
	}
	return nil
}
