// Package random implements the kernel's seedable generator and its
// distribution library (spec §4.7).
//
// Grounded on original_source/core/random.c: a stateful generator
// selectable between libc's rand() (reseeded from the state word on every
// call and never written back, so the same state always yields the same
// draw — kept only for parity, not recommended for reproducibility) and a 48-bit
// linear congruential generator in the style of the Cray RANF
// (x <- (a*x) mod 2^48, a = 44485709377909, output = (x>>16)&0x7fff).
// A nil state argument uses a package-global state, exactly as the
// original's ur_state pointer.
package random

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/kernelerr"
)

// Generator selects the core algorithm behind Unit/randunit.
type Generator int

const (
	// RNG2 reseeds a private math/rand source from state on every call
	// (matching the original's srand(*state); rand() pairing). It does
	// not write the resulting draw back into state.
	RNG2 Generator = iota
	// RNG3 is the 48-bit LCG; deterministic and reproducible across runs
	// given the same starting state (spec §8's RNG reproducibility test).
	RNG3
)

const (
	lcgModulus   = 1 << 48
	lcgMultiplier = 44485709377909
)

// State is the generator's mutable word, analogous to the original's
// `unsigned int *state` parameter: 32 bits wide, truncated from the LCG's
// 48-bit product exactly as the C code does with its unsigned-int cast.
type State uint32

var (
	globalMu    sync.Mutex
	globalState State
)

// EngineConfig selects the process-wide default generator and seed, set
// once at startup (spec §1.3's EngineConfig wiring).
type EngineConfig struct {
	Generator Generator
	Seed      State
}

// Seed installs the process-wide default state, used whenever callers
// pass a nil *State.
func Seed(s State) {
	globalMu.Lock()
	globalState = s
	globalMu.Unlock()
}

// lcgStep advances state by one LCG iteration in place and returns the
// 15-bit draw, matching randwarn()'s RNG3 branch byte-for-byte.
func lcgStep(state *State) uint32 {
	next := (uint64(lcgMultiplier) * uint64(*state)) % lcgModulus
	*state = State(next)
	return (uint32(next) >> 16) & 0x7fff
}

// draw15 returns one 15-bit pseudo-random sample using gen, reading and
// writing through state (or the package-global state when state is nil).
func draw15(gen Generator, state *State) uint32 {
	if state == nil {
		globalMu.Lock()
		defer globalMu.Unlock()
		switch gen {
		case RNG2:
			return libcRand(&globalState)
		default:
			return lcgStep(&globalState)
		}
	}
	switch gen {
	case RNG2:
		return libcRand(state)
	default:
		return lcgStep(state)
	}
}

// Unit returns a uniform sample in the open interval (0,1), retrying on
// the degenerate 0 and 1 endpoints exactly as the original's randunit
// TryAgain loop, injecting fresh entropy if a zero state would otherwise
// stagnate the sequence.
func Unit(log glog.Logger, gen Generator, state *State) float64 {
	for {
		ur := draw15(gen, state)
		u := float64(ur) / (0x7fff + 1.0)
		if u > 0 && u < 1 {
			return u
		}
		if state != nil && *state == 0 {
			*state = State(draw15(gen, state))
			log.Warn("randunit: introducing extra randomness to prevent state stagnation")
		}
	}
}

// UnitPositive returns a uniform sample in (0,1) excluding the value 0,
// matching randunit_pos.
func UnitPositive(log glog.Logger, gen Generator, state *State) float64 {
	for {
		if u := Unit(log, gen, state); u > 0 {
			return u
		}
	}
}

func warnOutOfBounds(log glog.Logger, fn, param string, v float64) {
	av := math.Abs(v)
	if v != 0 && (av < 1e-30 || av > 1e30) {
		log.Warn("random: parameter outside normal bounds",
			zap.String("fn", fn), zap.String("param", param), zap.Float64("value", v))
	}
}

// Degenerate is the Dirac-delta distribution: it always returns a.
func Degenerate(log glog.Logger, a float64) float64 {
	warnOutOfBounds(log, "degenerate", "a", a)
	return a
}

// Uniform draws from the half-open interval [a,b).
func Uniform(log glog.Logger, gen Generator, state *State, a, b float64) float64 {
	warnOutOfBounds(log, "uniform", "a", a)
	warnOutOfBounds(log, "uniform", "b", b)
	if b < a {
		log.Warn("random: uniform b is less than a", zap.Float64("a", a), zap.Float64("b", b))
	}
	return Unit(log, gen, state)*(b-a) + a
}

// Normal draws from a Gaussian via Box-Muller on a unit-interval sample:
// sqrt(-2 log r) * sin(2*pi*u) * s + m.
func Normal(log glog.Logger, gen Generator, state *State, m, s float64) float64 {
	if s < 0 {
		log.Warn("random: normal s is negative", zap.Float64("s", s))
	}
	r := Unit(log, gen, state)
	for r <= 0 || r > 1 {
		r = Unit(log, gen, state)
	}
	return math.Sqrt(-2*math.Log(r))*math.Sin(2*math.Pi*Unit(log, gen, state))*s + m
}

// Bernoulli returns 1 with probability p, 0 otherwise.
func Bernoulli(log glog.Logger, gen Generator, state *State, p float64) float64 {
	warnOutOfBounds(log, "bernoulli", "p", p)
	if p < 0 || p > 1 {
		log.Warn("random: bernoulli p not in [0,1]", zap.Float64("p", p))
	}
	if p >= Unit(log, gen, state) {
		return 1
	}
	return 0
}

// Sampled draws uniformly from x, matching random_sampled's index pick.
// Unlike the original's unchecked array access, an empty x is reported
// through ErrInvalidArgument instead of a fatal exception.
func Sampled(log glog.Logger, gen Generator, state *State, x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "random.Sampled: empty sample list")
	}
	idx := int(Unit(log, gen, state) * float64(len(x)))
	if idx >= len(x) {
		idx = len(x) - 1
	}
	v := x[idx]
	warnOutOfBounds(log, "sampled", "value", v)
	return v, nil
}

// Pareto draws via inverse-CDF: m * r^(-1/k). k must be positive.
func Pareto(log glog.Logger, gen Generator, state *State, m, k float64) (float64, error) {
	warnOutOfBounds(log, "pareto", "m", m)
	warnOutOfBounds(log, "pareto", "k", k)
	if k <= 0 {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "random.Pareto: k=%g must be greater than 0", k)
	}
	r := UnitPositive(log, gen, state)
	for r >= 1 {
		r = UnitPositive(log, gen, state)
	}
	return m * math.Pow(r, -1/k), nil
}

// Lognormal is exp of a scaled standard normal.
func Lognormal(log glog.Logger, gen Generator, state *State, gmu, gsigma float64) float64 {
	return math.Exp(Normal(log, gen, state, 0, 1)*gsigma + gmu)
}

// Exponential draws via inverse-CDF: -log(r)/lambda. lambda must be
// positive.
func Exponential(log glog.Logger, gen Generator, state *State, lambda float64) (float64, error) {
	if lambda <= 0 {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "random.Exponential: lambda=%g must be greater than 0", lambda)
	}
	warnOutOfBounds(log, "exponential", "lambda", lambda)
	r := UnitPositive(log, gen, state)
	for r >= 1 {
		r = UnitPositive(log, gen, state)
	}
	return -math.Log(r) / lambda, nil
}

// Weibull draws via inverse-CDF: lambda * (-log(1-u))^(1/k). k must be
// positive.
func Weibull(log glog.Logger, gen Generator, state *State, lambda, k float64) (float64, error) {
	if k <= 0 {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "random.Weibull: k=%g must be greater than 0", k)
	}
	return lambda * math.Pow(-math.Log(1-Unit(log, gen, state)), 1/k), nil
}

// Rayleigh draws via inverse-CDF: sigma * sqrt(-2 log(1-u)).
func Rayleigh(log glog.Logger, gen Generator, state *State, sigma float64) float64 {
	return sigma * math.Sqrt(-2*math.Log(1-Unit(log, gen, state)))
}

// Gamma draws from Gamma(alpha, beta) using the three-regime algorithm
// selection from original_source/core/random.c: an integer-alpha product
// of uniforms when alpha is a safe-against-underflow integer below 12,
// Ahrens-Dieter's GS algorithm when alpha<1, and Marsaglia/Cheng's
// rejection method (via a Cauchy-shaped envelope) for large alpha.
// alpha and beta must be positive.
func Gamma(log glog.Logger, gen Generator, state *State, alpha, beta float64) (float64, error) {
	if alpha <= 0 || beta <= 0 {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "random.Gamma: alpha=%g beta=%g must be positive", alpha, beta)
	}
	na := math.Floor(alpha)
	switch {
	case math.Abs(na-alpha) < 1e-8 && na < 12:
		prod := 1.0
		for i := 0; i < int(na); i++ {
			prod *= UnitPositive(log, gen, state)
		}
		return -beta * math.Log(prod), nil

	case na < 1:
		p := math.E / (alpha + math.E)
		var x float64
		for {
			u := Unit(log, gen, state)
			v := UnitPositive(log, gen, state)
			var q float64
			if u < p {
				x = math.Exp((1 / alpha) * math.Log(v))
				q = math.Exp(-x)
			} else {
				x = 1 - math.Log(v)
				q = math.Exp((alpha - 1) * math.Log(x))
			}
			if Unit(log, gen, state) < q {
				break
			}
		}
		return beta * x, nil

	default:
		sqrtA := math.Sqrt(2*alpha - 1)
		var x, y float64
		for {
			for {
				y = math.Tan(math.Pi * Unit(log, gen, state))
				x = sqrtA*y + alpha - 1
				if x > 0 {
					break
				}
			}
			v := Unit(log, gen, state)
			if v <= (1+y*y)*math.Exp((alpha-1)*math.Log(x/(alpha-1))-sqrtA*y) {
				break
			}
		}
		return beta * x, nil
	}
}

// Beta draws as the ratio of two independent Gamma(alpha,1)/Gamma(beta,1)
// draws: x1/(x1+x2).
func Beta(log glog.Logger, gen Generator, state *State, alpha, beta float64) (float64, error) {
	x1, err := Gamma(log, gen, state, alpha, 1)
	if err != nil {
		return 0, err
	}
	x2, err := Gamma(log, gen, state, beta, 1)
	if err != nil {
		return 0, err
	}
	return x1 / (x1 + x2), nil
}

// Triangle draws a symmetric triangular sample on [a,b] as the sum of
// two uniforms.
func Triangle(log glog.Logger, gen Generator, state *State, a, b float64) float64 {
	return (Unit(log, gen, state)+Unit(log, gen, state))*(b-a)/2 + a
}
