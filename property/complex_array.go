package property

import (
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/unit"
)

type complexArrayCodec struct{}

func (complexArrayCodec) ToString(d *Descriptor, value interface{}, want unit.Unit) (string, error) {
	cs, ok := value.([]Complex)
	if !ok {
		return "", kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: expected []Complex, got %T", d.Name, value)
	}
	cc := complexCodec{}
	parts := make([]string, len(cs))
	for i, c := range cs {
		s, err := cc.ToString(d, c, want)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ","), nil
}

func (complexArrayCodec) FromString(d *Descriptor, s string) (interface{}, error) {
	cc := complexCodec{}
	fields := strings.Split(s, ",")
	out := make([]Complex, len(fields))
	for i, f := range fields {
		v, err := cc.FromString(d, strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = v.(Complex)
	}
	return out, nil
}
