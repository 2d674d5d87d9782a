// Package aggregate implements group-property aggregation: compiling an
// "op(value[.part])" aggregator spec together with a find group
// expression into a reusable Aggregation, and folding the group's
// member values under the requested reduction (spec §4.6).
package aggregate

import (
	"math"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/find"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

// Op names a reduction (aggregate_mkgroup's aggregator keyword).
type Op int

const (
	OpMin Op = iota
	OpMax
	OpAvg
	OpStd
	OpSum
	OpMBE
	OpMean
	OpVar
	OpSkew
	OpKur
	OpCount
	OpGamma
)

func (op Op) String() string {
	switch op {
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	case OpAvg:
		return "avg"
	case OpStd:
		return "std"
	case OpSum:
		return "sum"
	case OpMBE:
		return "mbe"
	case OpMean:
		return "mean"
	case OpVar:
		return "var"
	case OpSkew:
		return "skew"
	case OpKur:
		return "kur"
	case OpCount:
		return "count"
	case OpGamma:
		return "gamma"
	default:
		return "invalid"
	}
}

// ParseOp recognizes the aggregator keywords aggregate_mkgroup accepts.
// "prod" is accepted but mapped onto Sum: the original's op-name table
// maps it there too (aggregate_mkgroup's `stricmp(aggrop,"prod")` branch
// assigns AGGR_SUM, not AGGR_PROD), and the dedicated product
// accumulator is never reached by any real aggregator string — so "prod"
// means sum here exactly as it does in the teacher.
func ParseOp(s string) (Op, error) {
	switch s {
	case "min":
		return OpMin, nil
	case "max":
		return OpMax, nil
	case "avg":
		return OpAvg, nil
	case "std":
		return OpStd, nil
	case "sum", "prod":
		return OpSum, nil
	case "mbe":
		return OpMBE, nil
	case "mean":
		return OpMean, nil
	case "var":
		return OpVar, nil
	case "skew":
		return OpSkew, nil
	case "kur":
		return OpKur, nil
	case "count":
		return OpCount, nil
	case "gamma":
		return OpGamma, nil
	default:
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group does not use a known aggregator %q", s)
	}
}

// Part selects a scalar component out of a complex-valued property.
type Part int

const (
	PartNone Part = iota
	PartReal
	PartImag
	PartMag
	PartArg
	PartAng
)

// Flags are per-aggregation modifiers parsed from the aggregator spec.
type Flags uint8

// FlagAbs is set by the `op|value|` spelling: the absolute value of each
// member's scalar is folded instead of its signed value.
const FlagAbs Flags = 1 << 0

// ComplexSource resolves a Complex-tagged-Enduse property's instantaneous
// value for an object. Enduse accumulators have no scalar body offset
// (property.Enduse reports Width 0), so aggregation over one is only
// possible once a source is registered — engine.Engine.Aggregate wires
// itself in as this source.
type ComplexSource interface {
	Complex(o *object.Object, d *property.Descriptor) (property.Complex, error)
}

// DoubleSource resolves a Loadshape-tagged property's current value for
// an object, for the same reason ComplexSource exists for Enduse.
type DoubleSource interface {
	Double(o *object.Object, d *property.Descriptor) (float64, error)
}

// Aggregation is a compiled, reusable group aggregation: the group
// membership (cached when the find program is constant), the resolved
// property/part/unit, and the reduction to fold over it.
type Aggregation struct {
	Op       Op
	Part     Part
	Flags    Flags
	Property *property.Descriptor
	Unit     unit.Unit
	Scale    float64

	Program *find.Program
	Objects *object.Store

	Loadshapes DoubleSource
	Enduses    ComplexSource

	last []*object.Object
}

// members returns the current group membership, rerunning Program when
// it is not flagged constant (spec §4.6's "if the group program is not
// marked constant ... reruns on every call").
func (a *Aggregation) members() ([]*object.Object, error) {
	if a.Program.ConstFlags&find.CFConstant == find.CFConstant && a.last != nil {
		return a.last, nil
	}
	set, err := a.Program.Run(a.Objects)
	if err != nil {
		return nil, err
	}
	a.last = set.Objects(a.Objects)
	return a.last, nil
}

// scalar extracts this aggregation's double value (part-selected,
// unit-converted) from one object, or ok=false if the object has no
// usable value (e.g. the complex accessor could not be built).
func (a *Aggregation) scalar(o *object.Object) (float64, bool, error) {
	switch a.Property.Type {
	case property.Double, property.Real, property.Float:
		acc, err := class.NewAccessor(a.Property, uintptr(len(o.Body)))
		if err != nil {
			return 0, false, nil
		}
		value := acc.GetFloat64(o.Body)
		if !a.Property.Unit.IsNone() && !a.Unit.IsNone() {
			value *= a.Scale
		}
		return value, true, nil

	case property.Complex:
		acc, err := class.NewAccessor(a.Property, uintptr(len(o.Body)))
		if err != nil {
			return 0, false, nil
		}
		value := complexPart(acc.GetComplex(o.Body), a.Part)
		if !a.Property.Unit.IsNone() && !a.Unit.IsNone() {
			value *= a.Scale
		}
		return value, true, nil

	case property.Loadshape:
		if a.Loadshapes == nil {
			return 0, false, kernelerr.Wrap(kernelerr.ErrNotImplemented, "aggregation over a loadshape property requires a registered loadshape source")
		}
		v, err := a.Loadshapes.Double(o, a.Property)
		if err != nil {
			return 0, false, nil
		}
		return v, true, nil

	case property.Enduse:
		if a.Enduses == nil {
			return 0, false, kernelerr.Wrap(kernelerr.ErrNotImplemented, "aggregation over an enduse property requires a registered enduse source")
		}
		c, err := a.Enduses.Complex(o, a.Property)
		if err != nil {
			return 0, false, nil
		}
		return complexPart(c, a.Part), true, nil

	default:
		return 0, false, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: type %s cannot be aggregated", a.Property.Name, a.Property.Type)
	}
}

func complexPart(c property.Complex, part Part) float64 {
	switch part {
	case PartReal:
		return c.Re
	case PartImag:
		return c.Im
	case PartMag:
		return c.Mag()
	case PartArg:
		return c.Arg()
	case PartAng:
		return c.Arg() * 180 / math.Pi
	default:
		return 0
	}
}

// Value folds the group's member values under Op, skipping any object
// not in service at now (spec §4.6). Mean/variance/std use the Welford
// compensated streaming update so the result stays numerically stable
// over large groups; gamma uses the gamma-of-samples reduction. Skew and
// kurtosis are declared but fail loudly, matching the teacher's
// unimplemented reducers.
func (a *Aggregation) Value(now timestamp.Timestamp) (float64, error) {
	if a.Op == OpSkew {
		return 0, kernelerr.Wrap(kernelerr.ErrNotImplemented, "skewness aggregation is not implemented")
	}
	if a.Op == OpKur {
		return 0, kernelerr.Wrap(kernelerr.ErrNotImplemented, "kurtosis aggregation is not implemented")
	}

	members, err := a.members()
	if err != nil {
		return 0, err
	}

	var numerator, denominator, secondary float64
	for _, o := range members {
		if !o.InService(now) {
			continue
		}
		value, ok, err := a.scalar(o)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		if a.Flags&FlagAbs == FlagAbs {
			value = math.Abs(value)
		}

		switch a.Op {
		case OpMin:
			if value < numerator || denominator == 0 {
				numerator = value
			}
			denominator = 1
		case OpMax:
			if value > numerator || denominator == 0 {
				numerator = value
			}
			denominator = 1
		case OpCount:
			numerator++
			denominator = 1
		case OpMBE:
			denominator++
			numerator += value
			secondary += (value - secondary) / denominator
		case OpAvg, OpMean:
			numerator += value
			denominator++
		case OpSum:
			numerator += value
			denominator = 1
		case OpGamma:
			denominator += math.Log(value)
			if numerator == 0 || secondary > value {
				secondary = value
			}
			numerator++
		case OpStd, OpVar:
			denominator++
			delta := value - secondary
			secondary += delta / denominator
			numerator += delta * (value - secondary)
		}
	}

	switch a.Op {
	case OpGamma:
		return 1 + numerator/(denominator-numerator*math.Log(secondary)), nil
	case OpStd:
		return math.Sqrt(numerator / (denominator - 1)), nil
	case OpVar:
		return numerator / (denominator - 1), nil
	case OpMBE:
		return numerator/denominator - secondary, nil
	default:
		return numerator / denominator, nil
	}
}
