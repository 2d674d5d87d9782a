package aggregate

import (
	"regexp"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/find"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/unit"
)

var (
	// specParenRe matches "op(value)"; specAbsRe matches the abs-flagged
	// "op|value|" spelling (aggregate_mkgroup's two sscanf forms).
	specParenRe = regexp.MustCompile(`^\s*([A-Za-z0-9_]{1,8})\((.+)\)\s*$`)
	specAbsRe   = regexp.MustCompile(`^\s*([A-Za-z0-9_]{1,8})\|(.+)\|\s*$`)

	// valueRe splits a value expression into property name, optional
	// ".part" selector, and optional "[unit]" suffix. When both are
	// present the part comes first ("value.part[unit]"); unlike the
	// teacher's two-pass sscanf/strrchr parse (which only computes the
	// part split correctly when no unit suffix is present), this grammar
	// resolves both in one pass.
	valueRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\.([A-Za-z]+))?(?:\[([^\]]*)\])?$`)
)

// Compile parses aggregator (e.g. "sum(power)", "std|power.real|",
// "mean(energy[kWh])") and groupExpr (a find group expression, see
// package find) into a reusable Aggregation (spec §4.6's
// aggregate_mkgroup). The group expression must pin a single class — so
// the property's offset is known once, in advance — and must select at
// least one in-service-agnostic member to resolve the property against.
func Compile(classes *class.Registry, objects *object.Store, units *unit.Table, aggregator, groupExpr string) (*Aggregation, error) {
	opName, valueExpr, flags, err := parseAggregatorSpec(aggregator)
	if err != nil {
		return nil, err
	}
	op, err := ParseOp(opName)
	if err != nil {
		return nil, err
	}

	comp := &find.Compiler{Classes: classes, Objects: objects}
	prog, err := comp.Compile(groupExpr)
	if err != nil {
		return nil, kernelerr.Wrapf(err, "aggregate group expression %q failed", groupExpr)
	}
	if prog.ConstFlags&find.CFClass != find.CFClass {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"aggregate group expression %q does not result in a set with a fixed class", groupExpr)
	}

	set, err := prog.Run(objects)
	if err != nil {
		return nil, err
	}
	members := set.Objects(objects)
	if len(members) == 0 {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"aggregate group expression %q results in an empty object list", groupExpr)
	}

	propName, part, unitName, err := splitValueExpr(valueExpr)
	if err != nil {
		return nil, err
	}

	sample := members[0]
	if sample.Class == nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q is not found in the objects satisfying %q", propName, groupExpr)
	}
	d := sample.Class.FindProperty(propName, nil)
	if d == nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrNotFound,
			"aggregate group property %q is not found in the objects satisfying search criteria %q", propName, groupExpr)
	}

	resolvedPart, err := validatePart(d, part)
	if err != nil {
		return nil, err
	}

	toUnit := unit.None
	scale := 1.0
	if unitName != "" {
		if d.Unit.IsNone() {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q is unitless and cannot be converted", propName)
		}
		toUnit, err = units.Lookup(unitName)
		if err != nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group %q has invalid units (%s)", aggregator, unitName)
		}
		scale, err = unit.Convert(d.Unit, toUnit)
		if err != nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q cannot use units %q", propName, unitName)
		}
	}

	return &Aggregation{
		Op:       op,
		Part:     resolvedPart,
		Flags:    flags,
		Property: d,
		Unit:     toUnit,
		Scale:    scale,
		Program:  prog,
		Objects:  objects,
		last:     members,
	}, nil
}

func parseAggregatorSpec(aggregator string) (op, value string, flags Flags, err error) {
	if m := specParenRe.FindStringSubmatch(aggregator); m != nil {
		return m[1], m[2], 0, nil
	}
	if m := specAbsRe.FindStringSubmatch(aggregator); m != nil {
		return m[1], m[2], FlagAbs, nil
	}
	return "", "", 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group %q is not valid", aggregator)
}

func splitValueExpr(expr string) (propName, part, unitName string, err error) {
	m := valueRe.FindStringSubmatch(expr)
	if m == nil {
		return "", "", "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate value expression %q is not valid", expr)
	}
	return m[1], m[2], m[3], nil
}

// validatePart enforces aggregate_mkgroup's per-type part rules: scalar
// numeric types (and loadshapes) take no part; complex-valued types
// (and enduse accumulators) require exactly one of real/imag/mag/arg/
// ang; anything else cannot be aggregated at all.
func validatePart(d *property.Descriptor, part string) (Part, error) {
	switch d.Type {
	case property.Double, property.Real, property.Float, property.Loadshape:
		if part != "" {
			return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q cannot have part %q", d.Name, part)
		}
		return PartNone, nil

	case property.Complex, property.Enduse:
		switch part {
		case "real":
			return PartReal, nil
		case "imag":
			return PartImag, nil
		case "mag":
			return PartMag, nil
		case "arg":
			return PartArg, nil
		case "ang":
			return PartAng, nil
		default:
			return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q cannot have part %q", d.Name, part)
		}

	default:
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "aggregate group property %q cannot be aggregated", d.Name)
	}
}
