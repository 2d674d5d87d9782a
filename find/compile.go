package find

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
)

// Compiler holds the registries a group expression needs to resolve class,
// isa, and parent-by-name references (find_mkpgm reaches these through
// global state in the original; this kernel threads them explicitly).
type Compiler struct {
	Classes *class.Registry
	Objects *object.Store
}

var (
	clauseSepRe = regexp.MustCompile(`(?i)\s+or\s+`)
	predSepRe   = regexp.MustCompile(`(?i)\s+and\s+|;`)
	predRe      = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(!=|<=|>=|!~|=|<|>|~|:)\s*(.*?)\s*$`)
	latRe       = regexp.MustCompile(`^(\d+)([NSns])(\d+)'([0-9.]+)"$`)
	longRe      = regexp.MustCompile(`^(\d+)([EWew])(\d+)'([0-9.]+)"$`)
)

// Compile parses a group expression into a Program (spec §4.5's
// find_mkpgm). Clauses are split on "or"/"OR" at the top level, each
// producing an AND-chain of predicates split on ';' or "and"/"AND" —
// matching the grammar expression_list implements, with OR enabled (see
// Program's doc comment on why that differs from the shipped original).
func (c *Compiler) Compile(expr string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "empty group expression")
	}

	prog := &Program{ConstFlags: CFConstant}
	for _, clauseExpr := range clauseSepRe.Split(expr, -1) {
		var clause []Instruction
		for _, predExpr := range predSepRe.Split(clauseExpr, -1) {
			predExpr = strings.TrimSpace(predExpr)
			if predExpr == "" {
				continue
			}
			in, flag, err := c.compilePredicate(predExpr)
			if err != nil {
				return nil, err
			}
			clause = append(clause, in)
			prog.ConstFlags |= flag
			if in.Field == FieldProperty {
				prog.ConstFlags &^= CFConstant
			}
		}
		if len(clause) == 0 {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "empty clause in group expression %q", expr)
		}
		prog.Clauses = append(prog.Clauses, clause)
	}
	if len(prog.Clauses) == 0 {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "no predicates found in group expression %q", expr)
	}
	return prog, nil
}

func (c *Compiler) compilePredicate(predExpr string) (Instruction, ConstFlags, error) {
	m := predRe.FindStringSubmatch(predExpr)
	if m == nil {
		return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "malformed find predicate %q", predExpr)
	}
	name, opStr, value := strings.ToLower(m[1]), m[2], unquote(m[3])
	op, err := parseOp(opStr)
	if err != nil {
		return Instruction{}, 0, err
	}

	switch name {
	case "id":
		n, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil || n < 0 {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "object id %q is invalid", value)
		}
		return Instruction{Field: FieldID, Op: op, IntVal: n}, CFID, nil

	case "class":
		if (op == OpIsa || op == OpEQ) && c.findClass(value) == nil {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrNotFound, "class %q not found", value)
		}
		if op == OpIsa {
			return Instruction{Field: FieldClass, Op: OpIsa, StrVal: value}, CFClass, nil
		}
		return Instruction{Field: FieldClass, Op: op, StrVal: value}, CFClass, nil

	case "isa":
		if c.findClass(value) == nil {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrNotFound, "class %q not found", value)
		}
		return Instruction{Field: FieldIsa, Op: OpIsa, StrVal: value}, CFClass, nil

	case "module":
		return Instruction{Field: FieldModule, Op: op, StrVal: value}, CFModule, nil

	case "groupid":
		return Instruction{Field: FieldGroupID, Op: op, StrVal: value}, CFName, nil

	case "parent":
		id, perr := c.resolveParent(value)
		if perr != nil {
			return Instruction{}, 0, perr
		}
		return Instruction{Field: FieldParent, Op: op, IntVal: int64(id)}, CFParent, nil

	case "rank":
		n, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil || n < 0 {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "rank %q is invalid", value)
		}
		return Instruction{Field: FieldRank, Op: op, IntVal: n}, CFRank, nil

	case "clock":
		t, ok := timestampFromLiteral(value)
		if !ok {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "clock %q is invalid", value)
		}
		return Instruction{Field: FieldClock, Op: op, IntVal: int64(t)}, CFClock, nil

	case "insvc", "in":
		t, ok := timestampFromLiteral(value)
		if !ok {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "insvc %q is invalid", value)
		}
		return Instruction{Field: FieldInSvc, Op: op, IntVal: int64(t)}, CFInSvc, nil

	case "outsvc", "out":
		t, ok := timestampFromLiteral(value)
		if !ok {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "outsvc %q is invalid", value)
		}
		return Instruction{Field: FieldOutSvc, Op: op, IntVal: int64(t)}, CFOutSvc, nil

	case "latitude":
		v, perr := parseDMS(value, latRe, 'S', 'N', 90)
		if perr != nil {
			return Instruction{}, 0, perr
		}
		return Instruction{Field: FieldLatitude, Op: op, RealVal: v}, CFLat, nil

	case "longitude":
		v, perr := parseDMS(value, longRe, 'W', 'E', 180)
		if perr != nil {
			return Instruction{}, 0, perr
		}
		return Instruction{Field: FieldLongitude, Op: op, RealVal: v}, CFLong, nil

	case "flags":
		n, perr := strconv.ParseInt(value, 0, 64)
		if perr != nil {
			return Instruction{}, 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "flags %q is invalid", value)
		}
		return Instruction{Field: FieldFlags, Op: op, IntVal: n}, 0, nil

	default:
		return Instruction{Field: FieldProperty, Op: op, Prop: name, StrVal: value}, 0, nil
	}
}

func parseOp(s string) (Op, error) {
	switch s {
	case "=":
		return OpEQ, nil
	case "!=":
		return OpNE, nil
	case "<":
		return OpLT, nil
	case "<=":
		return OpLE, nil
	case ">":
		return OpGT, nil
	case ">=":
		return OpGE, nil
	case "~":
		return OpLike, nil
	case "!~":
		return OpUnlike, nil
	case ":":
		return OpIsa, nil
	default:
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "unrecognized find operator %q", s)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func (c *Compiler) findClass(name string) *class.Class {
	if c.Classes == nil {
		return nil
	}
	for _, cl := range c.Classes.All() {
		if cl.Name == name {
			return cl
		}
	}
	return nil
}

// resolveParent accepts a bare object id, the literal "root"/"ROOT"
// (meaning no parent), or an object name looked up in the store —
// matching the original's object_find_name fallback in the "parent"
// predicate branch.
func (c *Compiler) resolveParent(value string) (object.ID, error) {
	if strings.EqualFold(value, "root") {
		return object.Invalid, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return object.ID(n), nil
	}
	if c.Objects != nil {
		if o, ok := c.Objects.ByName(value); ok {
			return o.ID, nil
		}
	}
	return 0, kernelerr.Wrapf(kernelerr.ErrNotFound, "parent %q not found", value)
}

// parseDMS parses a D[NS]M'S" (or D[EW]M'S") literal into signed decimal
// degrees, or falls back to a plain decimal-degrees literal — spec §4.5
// documents the DMS form; accepting bare decimals too is a Go-idiomatic
// convenience the sscanf-based original did not offer, noted in DESIGN.md.
func parseDMS(value string, re *regexp.Regexp, neg, pos byte, max float64) (float64, error) {
	if m := re.FindStringSubmatch(value); m != nil {
		d, _ := strconv.ParseFloat(m[1], 64)
		mins, _ := strconv.ParseFloat(m[3], 64)
		secs, _ := strconv.ParseFloat(m[4], 64)
		val := d + mins/60 + secs/3600
		hemi := byte(strings.ToUpper(m[2])[0])
		switch hemi {
		case neg:
			val = -val
		case pos:
			// no sign change
		default:
			return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "invalid hemisphere letter in %q", value)
		}
		if val < -max || val > max {
			return 0, kernelerr.Wrapf(kernelerr.ErrOutOfRange, "coordinate %q out of range", value)
		}
		return val, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < -max || v > max {
		return 0, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "coordinate %q is invalid", value)
	}
	return v, nil
}
