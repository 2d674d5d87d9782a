package property

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/unit"
)

// doubleFormat mirrors the original's global_double_format, the printf
// spec used by convert_from_double (%g rather than a fixed-precision
// form, since the original allows runtime configuration of it but the
// kernel fixes a sane default here).
const doubleFormat = "%g"

type doubleCodec struct{}

func (doubleCodec) ToString(d *Descriptor, value interface{}, want unit.Unit) (string, error) {
	v, ok := value.(float64)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected float64, got %T", d.Name, value)
	}
	scale, err := scaleFactor(d.Unit, want)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(doubleFormat, v*scale), nil
}

func (doubleCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	numPart, u, err := splitValueUnit(s)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
	}
	v, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
	}
	if u != "" && !d.Unit.IsNone() {
		from, err := lookupUnitToken(u)
		if err != nil {
			return nil, err
		}
		scale, err := unit.Convert(from, d.Unit)
		if err != nil {
			return nil, kernelerr.Wrapf(err, "property %q", d.Name)
		}
		v *= scale
	}
	return v, nil
}

type doubleArrayCodec struct{}

func (doubleArrayCodec) ToString(d *Descriptor, value interface{}, want unit.Unit) (string, error) {
	vs, ok := value.([]float64)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected []float64, got %T", d.Name, value)
	}
	scale, err := scaleFactor(d.Unit, want)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf(doubleFormat, v*scale)
	}
	return strings.Join(parts, ","), nil
}

func (doubleArrayCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: element %d: %v", d.Name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// intCodec handles Int16/Int32/Int64: the stored Go value is always
// int64, with Descriptor.Type.Width() recording the wire-visible size.
type intCodec struct{}

func (intCodec) ToString(d *Descriptor, value interface{}, _ unit.Unit) (string, error) {
	v, ok := value.(int64)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected int64, got %T", d.Name, value)
	}
	return strconv.FormatInt(v, 10), nil
}

func (intCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
	}
	return v, nil
}

type boolCodec struct{}

func (boolCodec) ToString(d *Descriptor, value interface{}, _ unit.Unit) (string, error) {
	v, ok := value.(bool)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected bool, got %T", d.Name, value)
	}
	if v {
		return "TRUE", nil
	}
	return "FALSE", nil
}

func (boolCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES":
		return true, nil
	case "FALSE", "0", "NO", "":
		return false, nil
	default:
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %q is not a boolean", d.Name, s)
	}
}

// stringCodec handles the fixed-capacity char8/char32/char256/char1024
// types: FromString rejects input exceeding the declared capacity
// rather than silently truncating it, the way a bounds-checked Go API
// should (the original relies on C buffer sizes and a stack buffer).
type stringCodec struct{ cap int }

func (c stringCodec) ToString(_ *Descriptor, value interface{}, _ unit.Unit) (string, error) {
	v, _ := value.(string)
	return v, nil
}

func (c stringCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	if len(s) > c.cap {
		return nil, kernelerr.Wrapf(kernelerr.ErrOutOfRange, "property %q: value exceeds %d-byte capacity", d.Name, c.cap)
	}
	return s, nil
}

// splitValueUnit separates a leading numeric literal from a trailing
// unit token, e.g. "12.5 kW" -> ("12.5", "kW").
func splitValueUnit(s string) (numPart, unitPart string, err error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && !isNumericByte(s[i-1]) {
		i--
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:]), nil
}

func isNumericByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E'
}

// lookupUnitToken resolves a bare unit name against the package-level
// default table; callers needing a model-specific table should scale
// the result themselves (Descriptor carries only the final scale).
var defaultUnits = unit.NewTable()

func lookupUnitToken(name string) (unit.Unit, error) {
	return defaultUnits.Lookup(name)
}
