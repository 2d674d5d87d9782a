package property

import (
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/unit"
)

// Codec is the string<->data conversion pair every property type
// implements, generalizing the original's per-type data_to_string/
// string_to_data function pointers (property.c's property_type table)
// into a single interface so delegated types (spec §4.2) can plug in
// alongside the built-ins. Values cross the boundary as interface{}
// rather than raw bytes: class.PropertyMapAccessor is the layer that
// knows how to read/write a typed value at a byte offset in an object's
// class body (SPEC_FULL.md §6); Codec only converts between that typed
// value and text.
type Codec interface {
	// ToString renders value as text, scaling from the property's
	// declared unit to want when both are set.
	ToString(d *Descriptor, value interface{}, want unit.Unit) (string, error)
	// FromString parses s into a value of the type this codec handles,
	// converting an optional trailing unit token into the property's
	// declared unit.
	FromString(d *Descriptor, s string) (interface{}, error)
}

var registry = map[Type]Codec{
	Double:       doubleCodec{},
	Real:         doubleCodec{},
	Float:        doubleCodec{},
	DoubleArray:  doubleArrayCodec{},
	Complex:      complexCodec{},
	ComplexArray: complexArrayCodec{},
	Enumeration:  enumCodec{},
	Set:          setCodec{},
	Int16:        intCodec{},
	Int32:        intCodec{},
	Int64:        intCodec{},
	Bool:         boolCodec{},
	Char8:        stringCodec{cap: 8},
	Char32:       stringCodec{cap: 32},
	Char256:      stringCodec{cap: 256},
	Char1024:     stringCodec{cap: 1024},
	Void:         voidCodec{},
}

// Lookup returns the Codec for d: the built-in for its Type, or the
// property's own Delegate when Type is Delegated.
func Lookup(d *Descriptor) (Codec, error) {
	if d.Type == Delegated {
		if d.Delegate == nil {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q: delegated type has no codec", d.Name)
		}
		return d.Delegate, nil
	}
	c, ok := registry[d.Type]
	if !ok {
		return nil, kernelerr.Wrapf(kernelerr.ErrNotImplemented, "property %q: type %s has no codec", d.Name, d.Type)
	}
	return c, nil
}

// scaleFactor resolves the from->want conversion scale, treating a
// unit-less want (no unit requested) as "no conversion".
func scaleFactor(from, want unit.Unit) (float64, error) {
	if want.IsNone() {
		return 1, nil
	}
	return unit.Convert(from, want)
}

type voidCodec struct{}

func (voidCodec) ToString(*Descriptor, interface{}, unit.Unit) (string, error) { return "", nil }
func (voidCodec) FromString(*Descriptor, string) (interface{}, error)          { return nil, nil }
