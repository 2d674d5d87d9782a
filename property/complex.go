package property

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/unit"
)

// ComplexNotation is the notation code a complex value's string form
// preserves: rectangular with an i or j imaginary suffix, or polar in
// degrees (d) or radians (r) — spec §4.2.
type ComplexNotation byte

const (
	NotationI ComplexNotation = 'i' // rectangular, "a+bi"
	NotationJ ComplexNotation = 'j' // rectangular, "a+bj"
	NotationD ComplexNotation = 'd' // polar degrees, "m d"
	NotationR ComplexNotation = 'r' // polar radians, "m r"
)

// Complex is the property value stored for the Complex/ComplexArray
// type tags: real/imaginary parts plus the notation its string form
// should use (the original's complex.Notation()).
type Complex struct {
	Re, Im   float64
	Notation ComplexNotation
}

// Mag returns the magnitude.
func (c Complex) Mag() float64 { return math.Hypot(c.Re, c.Im) }

// Arg returns the angle in radians, in (-pi, pi].
func (c Complex) Arg() float64 { return math.Atan2(c.Im, c.Re) }

// FromPolar builds a Complex from magnitude/angle-in-radians, keeping
// notation.
func FromPolar(mag, angleRad float64, notation ComplexNotation) Complex {
	return Complex{Re: mag * math.Cos(angleRad), Im: mag * math.Sin(angleRad), Notation: notation}
}

type complexCodec struct{}

func (complexCodec) ToString(d *Descriptor, value interface{}, want unit.Unit) (string, error) {
	c, ok := value.(Complex)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected Complex, got %T", d.Name, value)
	}
	scale, err := scaleFactor(d.Unit, want)
	if err != nil {
		return "", err
	}
	switch c.Notation {
	case NotationD:
		angle := c.Arg()
		if angle > math.Pi {
			angle -= 2 * math.Pi
		}
		return fmt.Sprintf("%g %g%c", c.Mag()*scale, angle*180/math.Pi, NotationD), nil
	case NotationR:
		angle := c.Arg()
		if angle > math.Pi {
			angle -= 2 * math.Pi
		}
		return fmt.Sprintf("%g %g%c", c.Mag()*scale, angle, NotationR), nil
	default:
		n := c.Notation
		if n == 0 {
			n = NotationI
		}
		sign := "+"
		im := c.Im * scale
		if im < 0 {
			sign = "-"
			im = -im
		}
		return fmt.Sprintf("%g%s%g%c", c.Re*scale, sign, im, n), nil
	}
}

func (complexCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Complex{Notation: NotationI}, nil
	}
	a, b, notation, unitTok, err := parseComplexLiteral(s)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
	}
	var c Complex
	switch notation {
	case NotationD:
		c = FromPolar(a, b*math.Pi/180, notation)
	case NotationR:
		c = FromPolar(a, b, notation)
	default:
		c = Complex{Re: a, Im: b, Notation: notation}
	}
	if unitTok != "" && !d.Unit.IsNone() {
		from, err := lookupUnitToken(unitTok)
		if err != nil {
			return nil, err
		}
		scale, err := unit.Convert(from, d.Unit)
		if err != nil {
			return nil, kernelerr.Wrapf(err, "property %q", d.Name)
		}
		c.Re *= scale
		c.Im *= scale
	}
	return c, nil
}

// parseComplexLiteral accepts "a±bi", "a±bj", "m d" (polar degrees),
// "m r" (polar radians), or a bare real number, optionally followed by
// a trailing unit token — matching convert_to_complex's sscanf grammar.
func parseComplexLiteral(s string) (a, b float64, notation ComplexNotation, unitTok string, err error) {
	if fields := strings.Fields(s); len(fields) >= 3 {
		if n := ComplexNotation(strings.ToLower(fields[2])[0]); (n == NotationD || n == NotationR) && len(fields[2]) == 1 {
			mag, merr := strconv.ParseFloat(fields[0], 64)
			angle, aerr := strconv.ParseFloat(fields[1], 64)
			if merr == nil && aerr == nil {
				rest := ""
				if len(fields) > 3 {
					rest = fields[3]
				}
				return mag, angle, n, rest, nil
			}
		}
	}

	i := 0
	readFloat := func() (float64, bool) {
		start := i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && (isDigitByte(s[i]) || s[i] == '.') {
			i++
		}
		if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
			i++
			if i < len(s) && (s[i] == '+' || s[i] == '-') {
				i++
			}
			for i < len(s) && isDigitByte(s[i]) {
				i++
			}
		}
		if i == start {
			return 0, false
		}
		v, perr := strconv.ParseFloat(s[start:i], 64)
		return v, perr == nil
	}

	re, ok := readFloat()
	if !ok {
		return 0, 0, 0, "", fmt.Errorf("complex literal %q: no real part", s)
	}
	if i >= len(s) {
		return re, 0, NotationI, "", nil
	}
	im, ok := readFloat()
	if !ok {
		return 0, 0, 0, "", fmt.Errorf("complex literal %q: malformed imaginary part", s)
	}
	if i >= len(s) {
		return 0, 0, 0, "", fmt.Errorf("complex literal %q: missing notation suffix", s)
	}
	n := ComplexNotation(s[i])
	if n != NotationI && n != NotationJ && n != NotationD && n != NotationR {
		return 0, 0, 0, "", fmt.Errorf("complex literal %q: unrecognized notation %q", s, string(s[i]))
	}
	i++
	return re, im, n, strings.TrimSpace(s[i:]), nil
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
