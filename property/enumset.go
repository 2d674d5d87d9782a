package property

import (
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/unit"
)

// enumCodec implements Enumeration: keyword match first, then a "0x"
// hex literal, then decimal — matching convert_to/from_enumeration.
type enumCodec struct{}

func (enumCodec) ToString(d *Descriptor, value interface{}, _ unit.Unit) (string, error) {
	v, ok := value.(int64)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected int64, got %T", d.Name, value)
	}
	if k, ok := d.FindKeyword(uint64(v)); ok {
		return k.Name, nil
	}
	return strconv.FormatInt(v, 10), nil
}

func (enumCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	if k, ok := d.FindKeywordByName(s); ok {
		return int64(k.Value), nil
	}
	if s == "" {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: empty enumeration literal", d.Name)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		if err != nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: keyword %q is not valid", d.Name, s)
	}
	return v, nil
}

// setCodec implements Set: a '|'-delimited keyword list, or — when the
// property carries FlagCharset and the input contains no '|' — a bare
// concatenation of single-character keywords, matching convert_to/
// from_set.
type setCodec struct{}

func (setCodec) ToString(d *Descriptor, value interface{}, _ unit.Unit) (string, error) {
	v, ok := value.(uint64)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected uint64, got %T", d.Name, value)
	}
	remaining := v
	isZero := v == 0
	var parts []string
	for _, k := range d.Keywords {
		matches := (!isZero && k.Value != 0 && (k.Value&remaining) == k.Value) || (k.Value == 0 && isZero)
		if matches {
			remaining &^= k.Value
			parts = append(parts, k.Name)
		}
	}
	sep := "|"
	if d.Flags&FlagCharset != 0 {
		sep = ""
	}
	return strings.Join(parts, sep), nil
}

func (setCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: %v", d.Name, err)
		}
		return v, nil
	}
	if s != "" && isDigitByte(s[0]) {
		v, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			return v, nil
		}
	}

	var value uint64
	if d.Flags&FlagCharset != 0 && !strings.Contains(s, "|") {
		for _, ch := range s {
			found := false
			for _, k := range d.Keywords {
				if len(k.Name) > 0 && rune(k.Name[0]) == ch {
					value |= k.Value
					found = true
					break
				}
			}
			if !found {
				return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: set member %q is not a keyword", d.Name, string(ch))
			}
		}
		return value, nil
	}

	for _, tok := range strings.Split(s, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k, ok := d.FindKeywordByName(tok)
		if !ok {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: set member %q is not a keyword", d.Name, tok)
		}
		value |= k.Value
	}
	return value, nil
}
