// Package property implements the kernel's typed field model: the
// closed set of property type tags, their string<->data codecs, units,
// complex notation, enumeration/set keywords, and the notify dispatch
// (spec §3, §4.2).
package property

import "github.com/rob-gra/gridsim-core/unit"

// Type is the closed set of property type tags a class body field can
// carry, matching the PROPERTYTYPE enum in original_source/core/class.h.
type Type int

const (
	Void Type = iota
	Double
	Complex
	Enumeration
	Set
	Int16
	Int32
	Int64
	Char8
	Char32
	Char256
	Char1024
	ObjectRef
	Delegated
	Bool
	TimestampType
	DoubleArray
	ComplexArray
	Real
	Float
	Loadshape
	Enduse
)

// width is the fixed byte size of one instance of each type, per
// original_source/core/property.c's property_type table. Delegated has
// no fixed width; sized strings report their declared capacity.
var width = [...]int{
	Void: 0, Double: 8, Complex: 16, Enumeration: 4, Set: 8,
	Int16: 2, Int32: 4, Int64: 8, Char8: 8, Char32: 32, Char256: 256,
	Char1024: 1024, ObjectRef: 8, Delegated: -1, Bool: 4, TimestampType: 8,
	DoubleArray: 8, ComplexArray: 16, Real: 8, Float: 4, Loadshape: 0, Enduse: 0,
}

var typeNames = [...]string{
	Void: "void", Double: "double", Complex: "complex", Enumeration: "enumeration",
	Set: "set", Int16: "int16", Int32: "int32", Int64: "int64", Char8: "char8",
	Char32: "char32", Char256: "char256", Char1024: "char1024", ObjectRef: "object",
	Delegated: "delegated", Bool: "bool", TimestampType: "timestamp",
	DoubleArray: "double_array", ComplexArray: "complex_array", Real: "real",
	Float: "float", Loadshape: "loadshape", Enduse: "enduse",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// Width returns the stored byte size of t, or -1 for Delegated (whose
// width is determined by the module-supplied codec), per property.c's
// property_size.
func (t Type) Width() int {
	if int(t) < 0 || int(t) >= len(width) {
		return 0
	}
	return width[t]
}

// HasUnit reports whether t is allowed to carry a unit — only double and
// complex properties may (property_malloc's check).
func (t Type) HasUnit() bool { return t == Double || t == Complex }

// Access is the property's read/write visibility class.
type Access int

const (
	Public Access = iota
	Protected
	Private
	Reference
	Hidden
)

// Flags are the per-property boolean attributes carried alongside the
// type tag.
type Flags uint32

const (
	FlagNone           Flags = 0
	FlagDeprecated     Flags = 1 << 0
	FlagExtended       Flags = 1 << 1
	FlagCharset        Flags = 1 << 2 // single-character keyword set mode
	FlagNotify         Flags = 1 << 3
	FlagNotifyOverride Flags = 1 << 4
)

// Keyword binds a name to a value for an Enumeration (32-bit) or Set
// (64-bit bitfield) property.
type Keyword struct {
	Name  string
	Value uint64
}

// NotifyFunc is called before or after a property write; when the
// property carries FlagNotifyOverride, a false return from a "before"
// call vetoes the write (spec §4.2's notify chain).
type NotifyFunc func(obj interface{}, newValue string) bool

// Descriptor is a published property: a named, typed field at a given
// byte offset within an object's class body.
type Descriptor struct {
	Name        string // <= 63 chars, enforced by class.Builder
	Type        Type
	Offset      uintptr
	Width       int // equals Type.Width() except for sized strings/arrays
	Access      Access
	Flags       Flags
	Unit        unit.Unit
	Keywords    []Keyword
	Description string
	Notify      NotifyFunc

	// Delegate is set only when Type == Delegated; it supplies the
	// module-defined codec for this property's storage.
	Delegate Codec
}

// FindKeyword returns the keyword whose value matches v, if any.
func (d *Descriptor) FindKeyword(v uint64) (Keyword, bool) {
	for _, k := range d.Keywords {
		if k.Value == v {
			return k, true
		}
	}
	return Keyword{}, false
}

// FindKeywordByName returns the keyword whose name matches s, if any.
func (d *Descriptor) FindKeywordByName(s string) (Keyword, bool) {
	for _, k := range d.Keywords {
		if k.Name == s {
			return k, true
		}
	}
	return Keyword{}, false
}
