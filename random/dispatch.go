package random

import (
	"github.com/rob-gra/gridsim-core/glog"
	"github.com/rob-gra/gridsim-core/kernelerr"
)

// Type names a distribution for the top-level dispatcher, mirroring the
// original's RANDOMTYPE enum and its name/nargs lookup table.
type Type int

const (
	TypeDegenerate Type = iota
	TypeUniform
	TypeNormal
	TypeBernoulli
	TypeSampled
	TypePareto
	TypeLognormal
	TypeExponential
	TypeRayleigh
	TypeWeibull
	TypeGamma
	TypeBeta
	TypeTriangle
)

var typeNames = [...]string{
	TypeDegenerate:  "degenerate",
	TypeUniform:     "uniform",
	TypeNormal:      "normal",
	TypeBernoulli:   "bernoulli",
	TypeSampled:     "sampled",
	TypePareto:      "pareto",
	TypeLognormal:   "lognormal",
	TypeExponential: "exponential",
	TypeRayleigh:    "rayleigh",
	TypeWeibull:     "weibull",
	TypeGamma:       "gamma",
	TypeBeta:        "beta",
	TypeTriangle:    "triangle",
}

// typeArgCount is the number of (a,b)-style parameters each distribution
// takes; Sampled takes a slice instead and is dispatched separately.
var typeArgCount = [...]int{
	TypeDegenerate: 1, TypeUniform: 2, TypeNormal: 2, TypeBernoulli: 1, TypeSampled: -1,
	TypePareto: 2, TypeLognormal: 2, TypeExponential: 1, TypeRayleigh: 1, TypeWeibull: 2,
	TypeGamma: 2, TypeBeta: 2, TypeTriangle: 2,
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// ParseType resolves a distribution name to a Type, per random_type.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// NArgs returns the distribution's fixed parameter count, or -1 for the
// variable-length Sampled distribution, per random_nargs.
func (t Type) NArgs() int {
	if int(t) < 0 || int(t) >= len(typeArgCount) {
		return 0
	}
	return typeArgCount[t]
}

// DrawContext bundles the arguments every distribution function needs,
// so callers building a RandomVar don't have to thread log/gen/state
// through every call site individually.
type DrawContext struct {
	Log       glog.Logger
	Generator Generator
	State     *State
}

// Draw dispatches by Type to the matching distribution function, the Go
// counterpart of _random_value's switch over RANDOMTYPE. Sampled reads
// its sample list from samples and ignores a, b.
func Draw(ctx DrawContext, t Type, a, b float64, samples []float64) (float64, error) {
	log, gen, state := ctx.Log, ctx.Generator, ctx.State
	switch t {
	case TypeDegenerate:
		return Degenerate(log, a), nil
	case TypeUniform:
		return Uniform(log, gen, state, a, b), nil
	case TypeNormal:
		return Normal(log, gen, state, a, b), nil
	case TypeBernoulli:
		return Bernoulli(log, gen, state, a), nil
	case TypeSampled:
		return Sampled(log, gen, state, samples)
	case TypePareto:
		return Pareto(log, gen, state, a, b)
	case TypeLognormal:
		return Lognormal(log, gen, state, a, b), nil
	case TypeExponential:
		return Exponential(log, gen, state, a)
	case TypeRayleigh:
		return Rayleigh(log, gen, state, a), nil
	case TypeWeibull:
		return Weibull(log, gen, state, a, b)
	case TypeGamma:
		return Gamma(log, gen, state, a, b)
	case TypeBeta:
		return Beta(log, gen, state, a, b)
	case TypeTriangle:
		return Triangle(log, gen, state, a, b), nil
	default:
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "random.Draw: unknown type %d", t)
	}
}
