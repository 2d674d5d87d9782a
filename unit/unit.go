// Package unit implements the kernel's physical-unit table and the single
// externally relevant operation, Convert (spec §3, §4.2).
package unit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
)

// Unit is an opaque handle into a Table: a name, a linear scale factor to
// its family's base unit, and the family it belongs to. Unit-less values
// use the zero Unit.
type Unit struct {
	Name   string
	Family string
	Scale  float64 // value_in_base = value_in_unit * Scale
}

// None is the unit-less sentinel; a property with no declared unit rejects
// unit-tagged input (spec §3).
var None = Unit{}

// IsNone reports whether u is the unit-less sentinel.
func (u Unit) IsNone() bool { return u.Family == "" }

// Table is a registry of units loaded from unitfile.txt (spec §6).
type Table struct {
	units map[string]Unit
}

// NewTable returns an empty table seeded with the base SI-ish units the
// kernel ships without a file: dimensionless, seconds, watts, volts, amps.
func NewTable() *Table {
	t := &Table{units: make(map[string]Unit)}
	for _, u := range []Unit{
		{"", "scalar", 1},
		{"s", "time", 1},
		{"min", "time", 60},
		{"h", "time", 3600},
		{"W", "power", 1},
		{"kW", "power", 1000},
		{"MW", "power", 1_000_000},
		{"VA", "power", 1},
		{"kVA", "power", 1000},
		{"V", "voltage", 1},
		{"kV", "voltage", 1000},
		{"A", "current", 1},
		{"kWh", "energy", 3_600_000},
		{"Wh", "energy", 3600},
		{"Btu/h", "heatrate", 1},
		{"degF", "temperature", 1},
		{"degC", "temperature", 1},
		{"deg", "angle", 1},
		{"rad", "angle", 1},
	} {
		t.units[u.Name] = u
	}
	return t
}

// Lookup finds a unit by name.
func (t *Table) Lookup(name string) (Unit, error) {
	if name == "" {
		return None, nil
	}
	u, ok := t.units[name]
	if !ok {
		return Unit{}, kernelerr.Wrapf(kernelerr.ErrNotFound, "unit %q", name)
	}
	return u, nil
}

// Register adds or overwrites a unit definition.
func (t *Table) Register(u Unit) {
	t.units[u.Name] = u
}

// Convert returns the scale factor such that value_in_to = value_in_from *
// scale. Units must share a family; unit-less source/destination converts
// only to/from another unit-less value (spec §3's invariant).
func Convert(from, to Unit) (float64, error) {
	if from.IsNone() && to.IsNone() {
		return 1, nil
	}
	if from.IsNone() != to.IsNone() {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "cannot convert unit-less value to/from %q", to.Name)
	}
	if from.Family != to.Family {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "incompatible units %q and %q", from.Name, to.Name)
	}
	return from.Scale / to.Scale, nil
}

// Load parses a unitfile.txt-style reader: one definition per line,
// `name family scale`, blank lines and `#` comments ignored.
func (t *Table) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "unitfile: bad line %q", line)
		}
		scale, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "unitfile: bad scale in %q", line)
		}
		t.Register(Unit{Name: fields[0], Family: fields[1], Scale: scale})
	}
	return scanner.Err()
}

// Parse splits a string value into its numeric part and a trailing unit
// token, e.g. "12.5 kW" -> (12.5, kW). Used by the property string parser
// (spec §4.2) to accept an optional trailing unit.
func Parse(s string, t *Table) (value float64, u Unit, err error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && !isNumericByte(s[i-1]) {
		i--
	}
	numPart := strings.TrimSpace(s[:i])
	unitPart := strings.TrimSpace(s[i:])
	value, err = strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, Unit{}, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "value %q: %v", s, err)
	}
	if unitPart == "" {
		return value, None, nil
	}
	u, err = t.Lookup(unitPart)
	return value, u, err
}

func isNumericByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E'
}

func (u Unit) String() string {
	if u.IsNone() {
		return ""
	}
	return fmt.Sprintf("%s(%s)", u.Name, u.Family)
}
