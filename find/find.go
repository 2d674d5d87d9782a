// Package find implements the group-expression compiler and the bitset
// executor that runs a compiled program over an object store (spec §4.5).
// A group expression is a sequence of predicates over header fields and
// properties, joined by AND (the default, and the only form the original
// ships — see Compile's doc comment) or OR, terminated by end-of-string or
// ';'.
package find

import (
	"bytes"
	"path/filepath"
	"strconv"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

// Field names a header field or "property" for an ad-hoc property lookup
// (spec §4.5's recognized field list).
type Field int

const (
	FieldID Field = iota
	FieldClass
	FieldIsa
	FieldModule
	FieldGroupID
	FieldParent
	FieldRank
	FieldClock
	FieldInSvc
	FieldOutSvc
	FieldLatitude
	FieldLongitude
	FieldFlags
	FieldProperty
)

// Op names a relational operator (spec §4.5's relop list).
type Op int

const (
	OpEQ Op = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpLike   // ~, glob-like match
	OpUnlike // !~, negated match
	OpIsa    // :, isa shorthand
)

// ConstFlags accumulates which header fields a compiled program constrains,
// so the scheduler and aggregator can decide whether the result set is
// time-invariant and therefore cacheable (spec §4.5, "constants-flag set").
type ConstFlags uint32

const (
	CFID ConstFlags = 1 << iota
	CFClass
	CFModule
	CFName
	CFParent
	CFRank
	CFLat
	CFLong
	CFClock
	CFInSvc
	CFOutSvc
	// CFConstant is set on a program with no property predicates: one
	// whose result set never needs to be rerun once class & topology are
	// pinned, matching add_pgm's "initially the result is invariant" seed.
	CFConstant
)

// Instruction is one compiled predicate: a field/op/literal triple plus,
// for FieldProperty, the property name to look up on each object.
type Instruction struct {
	Field   Field
	Op      Op
	Prop    string
	IntVal  int64
	RealVal float64
	StrVal  string
}

// Program is a compiled group expression: one or more AND-clauses (each a
// slice of Instructions, all of which must pass) joined by OR — the
// original's grammar accepts "OR" as a token but ships it disabled
// (`#if 0` around the OR branch in expression_list); this kernel implements
// it for real, since spec.md documents OR as supported (a supplemented
// feature, not a behavior change to an existing one).
type Program struct {
	Clauses    [][]Instruction
	ConstFlags ConstFlags
}

// eval runs one instruction against o, looking up an ad-hoc property via
// classRegistry-free FindProperty/accessor resolution through the object's
// own class when Field is FieldProperty.
func (in Instruction) eval(o *object.Object) (bool, error) {
	switch in.Field {
	case FieldID:
		return compareInt(int64(o.ID), in.Op, in.IntVal)
	case FieldClass:
		if o.Class == nil {
			return false, nil
		}
		if in.Op == OpIsa {
			return isA(o.Class, in.StrVal), nil
		}
		return compareString(o.Class.Name, in.Op, in.StrVal)
	case FieldIsa:
		if o.Class == nil {
			return false, nil
		}
		return isA(o.Class, in.StrVal), nil
	case FieldModule:
		if o.Class == nil {
			return false, nil
		}
		return compareString(o.Class.Module, in.Op, in.StrVal)
	case FieldGroupID:
		return compareString(o.GroupID, in.Op, in.StrVal)
	case FieldParent:
		return compareInt(int64(o.Parent), in.Op, in.IntVal)
	case FieldRank:
		return compareInt(int64(o.Rank), in.Op, in.IntVal)
	case FieldClock:
		return compareInt(int64(o.Clock), in.Op, in.IntVal)
	case FieldInSvc:
		return compareInt(int64(o.InSvc), in.Op, in.IntVal)
	case FieldOutSvc:
		return compareInt(int64(o.OutSvc), in.Op, in.IntVal)
	case FieldLatitude:
		return compareReal(o.Latitude, in.Op, in.RealVal)
	case FieldLongitude:
		return compareReal(o.Longitude, in.Op, in.RealVal)
	case FieldFlags:
		return compareInt(int64(o.Flags), in.Op, in.IntVal)
	case FieldProperty:
		return evalProperty(o, in)
	default:
		return false, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "unrecognized find field %d", in.Field)
	}
}

// evalProperty matches the original's compare_property: regardless of the
// property's declared type, the value is rendered to its natural string
// form and the predicate is always a string comparison — find never does
// a numeric compare on a property value.
func evalProperty(o *object.Object, in Instruction) (bool, error) {
	if o.Class == nil {
		return false, nil
	}
	d := o.Class.FindProperty(in.Prop, nil)
	if d == nil {
		return false, nil
	}
	s, err := propertyToString(d, o.Body)
	if err != nil {
		return false, nil
	}
	return compareString(s, in.Op, in.StrVal)
}

// propertyToString reads a property's typed value out of body and renders
// it with the property's Codec. Fixed-width char properties are read
// directly out of the body bytes (the bytes already are the string); every
// other type goes through class.PropertyMapAccessor to recover its scalar
// value. Types with neither representation here (complex, arrays,
// loadshape/enduse handles) are not supported as find predicates.
func propertyToString(d *property.Descriptor, body []byte) (string, error) {
	codec, err := property.Lookup(d)
	if err != nil {
		return "", err
	}

	switch d.Type {
	case property.Char8, property.Char32, property.Char256, property.Char1024:
		end := int(d.Offset) + d.Width
		if end > len(body) {
			return "", kernelerr.Wrap(kernelerr.ErrOutOfRange, "property extends past object body")
		}
		raw := body[d.Offset:end]
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return string(raw), nil
	}

	acc, err := class.NewAccessor(d, uintptr(len(body)))
	if err != nil {
		return "", err
	}
	var value interface{}
	switch d.Type {
	case property.Double, property.Real, property.Float:
		value = acc.GetFloat64(body)
	case property.Int16, property.Int32, property.Int64, property.Enumeration, property.TimestampType:
		value = acc.GetInt64(body)
	case property.Set:
		value = acc.GetUint64(body)
	case property.Bool:
		value = acc.GetBool(body)
	default:
		return "", kernelerr.Wrapf(kernelerr.ErrNotImplemented, "property %q: type %s is not supported in find predicates", d.Name, d.Type)
	}
	return codec.ToString(d, value, unit.None)
}

// isA reports whether c is exactly the class named name, or descends from
// it through the single-inheritance Parent chain (spec §4.5's "isa"
// class-or-subclass test).
func isA(c *class.Class, name string) bool {
	for ; c != nil; c = c.Parent {
		if c.Name == name {
			return true
		}
	}
	return false
}

func compareInt(a int64, op Op, b int64) (bool, error) {
	switch op {
	case OpEQ:
		return a == b, nil
	case OpNE:
		return a != b, nil
	case OpLT:
		return a < b, nil
	case OpLE:
		return a <= b, nil
	case OpGT:
		return a > b, nil
	case OpGE:
		return a >= b, nil
	default:
		return false, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "operator not supported on integers")
	}
}

func compareReal(a float64, op Op, b float64) (bool, error) {
	switch op {
	case OpEQ:
		return a == b, nil
	case OpNE:
		return a != b, nil
	case OpLT:
		return a < b, nil
	case OpLE:
		return a <= b, nil
	case OpGT:
		return a > b, nil
	case OpGE:
		return a >= b, nil
	default:
		return false, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "operator not supported on real values")
	}
}

func compareString(a string, op Op, b string) (bool, error) {
	switch op {
	case OpEQ:
		return a == b, nil
	case OpNE:
		return a != b, nil
	case OpLT:
		return a < b, nil
	case OpLE:
		return a <= b, nil
	case OpGT:
		return a > b, nil
	case OpGE:
		return a >= b, nil
	case OpLike:
		ok, _ := filepath.Match(b, a)
		return ok, nil
	case OpUnlike:
		ok, _ := filepath.Match(b, a)
		return !ok, nil
	default:
		return false, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "operator not supported on strings")
	}
}

// Run starts from the full object set and, for every clause, keeps only the
// objects passing every instruction in that clause; the program's result is
// the union (OR) of each clause's surviving set, matching find_runpgm's
// per-instruction bit-flip but generalized to Program's OR of AND-clauses.
func (p *Program) Run(store *object.Store) (*Set, error) {
	result := NewSet()
	for _, clause := range p.Clauses {
		candidates := store.All()
		for _, in := range clause {
			var kept []*object.Object
			for _, o := range candidates {
				ok, err := in.eval(o)
				if err != nil {
					return nil, err
				}
				if ok {
					kept = append(kept, o)
				}
			}
			candidates = kept
		}
		for _, o := range candidates {
			result.Add(o.ID)
		}
	}
	return result, nil
}

// timestampFromLiteral parses a bare literal as a timestamp value (the
// fields that accept TIMESTAMP literals use the Unix-seconds integer form;
// full date/time literal parsing is delegated to timestamp.Parse elsewhere
// in the kernel).
func timestampFromLiteral(s string) (timestamp.Timestamp, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return timestamp.Timestamp(n), true
}
