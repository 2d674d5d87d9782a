package random

import "github.com/rob-gra/gridsim-core/timestamp"

// Var is a persistent random-valued object: it stores the distribution
// type and parameters, an optional truncation window, a refresh period,
// an integrate (random-walk) flag, and the last drawn value, per spec
// §4.7's randomvar description.
type Var struct {
	Ctx  DrawContext
	Type Type
	A, B float64
	// Samples backs TypeSampled draws; unused by every other Type.
	Samples []float64

	// Low, High bound the accepted draw when Truncated is set; Sync
	// rejection-samples until the result lands in [Low, High].
	Truncated  bool
	Low, High  float64
	// RefreshPeriod is the tick interval (seconds) between fresh draws;
	// Sync is a no-op between refreshes.
	RefreshPeriod timestamp.Timestamp
	// Integrate, when set, accumulates successive draws (a random walk)
	// instead of replacing Value outright.
	Integrate bool

	Value    float64
	lastSync timestamp.Timestamp
	primed   bool
}

// Sync advances the variable to time t: if t is a multiple of
// RefreshPeriod and differs from the last synced time (or this is the
// first call), draw a fresh sample, truncating by rejection when a window is
// set, then fold it into Value per Integrate. Returns the updated
// Value.
func (v *Var) Sync(t timestamp.Timestamp) (float64, error) {
	due := !v.primed
	if v.RefreshPeriod > 0 {
		due = due || (int64(t)%int64(v.RefreshPeriod)) == 0 && t != v.lastSync
	}
	if !due {
		return v.Value, nil
	}
	sample, err := v.drawTruncated()
	if err != nil {
		return 0, err
	}
	if v.Integrate && v.primed {
		v.Value += sample
	} else {
		v.Value = sample
	}
	v.primed = true
	v.lastSync = t
	return v.Value, nil
}

func (v *Var) drawTruncated() (float64, error) {
	for {
		x, err := Draw(v.Ctx, v.Type, v.A, v.B, v.Samples)
		if err != nil {
			return 0, err
		}
		if !v.Truncated || (x >= v.Low && x <= v.High) {
			return x, nil
		}
	}
}
