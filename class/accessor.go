package class

import (
	"unsafe"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/property"
)

// PropertyMapAccessor reads/writes a property directly at its byte
// offset into an object's class body, built by NewAccessor from the
// property's descriptor rather than resolved by reflection — matching
// the original's direct pointer-offset property access and keeping the
// scheduler's hot sync loop off the reflect path (SPEC_FULL.md §6).
type PropertyMapAccessor struct {
	desc   *property.Descriptor
	offset uintptr
	width  int
}

// storageWidth is the accessor's in-memory slot size for a scalar
// property, distinct from Descriptor.Width (the wire-visible size used
// by string/stream conversion): every integer-ish scalar is stored as a
// full machine word so one accessor family (GetInt64/GetUint64/
// GetFloat64/GetBool) covers every tag without per-width duplication.
func storageWidth(t property.Type) (int, bool) {
	switch t {
	case property.Double, property.Real, property.Float:
		return 8, true
	case property.Int16, property.Int32, property.Int64, property.Enumeration, property.TimestampType:
		return 8, true
	case property.Set:
		return 8, true
	case property.Bool:
		return 4, true
	case property.Complex:
		return 16, true
	default:
		return 0, false
	}
}

// NewAccessor builds an accessor for d over an object body of bodyLen
// bytes, failing if the property's declared offset plus its storage
// width would read or write past the body, or if d's type has no
// scalar accessor (strings, arrays, loadshape/enduse and
// delegated values are read through property.Codec instead).
func NewAccessor(d *property.Descriptor, bodyLen uintptr) (*PropertyMapAccessor, error) {
	w, ok := storageWidth(d.Type)
	if !ok {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"property %q: type %s has no direct scalar accessor", d.Name, d.Type)
	}
	if d.Offset+uintptr(w) > bodyLen {
		return nil, kernelerr.Wrapf(kernelerr.ErrOutOfRange,
			"property %q: offset %d + width %d exceeds class body size %d", d.Name, d.Offset, w, bodyLen)
	}
	return &PropertyMapAccessor{desc: d, offset: d.Offset, width: w}, nil
}

// fieldPointer returns the address of this property's storage within
// body, an object's class-body byte slice.
func (a *PropertyMapAccessor) fieldPointer(body []byte) unsafe.Pointer {
	return unsafe.Pointer(&body[a.offset])
}

// GetFloat64 reads a Double/Real/Float-tagged field.
func (a *PropertyMapAccessor) GetFloat64(body []byte) float64 {
	return *(*float64)(a.fieldPointer(body))
}

// SetFloat64 writes a Double/Real/Float-tagged field.
func (a *PropertyMapAccessor) SetFloat64(body []byte, v float64) {
	*(*float64)(a.fieldPointer(body)) = v
}

// GetInt64 reads an Int16/Int32/Int64/Enumeration-tagged field, stored
// uniformly as a full int64 word regardless of the property's declared
// wire width.
func (a *PropertyMapAccessor) GetInt64(body []byte) int64 {
	return *(*int64)(a.fieldPointer(body))
}

// SetInt64 writes an Int16/Int32/Int64/Enumeration-tagged field.
func (a *PropertyMapAccessor) SetInt64(body []byte, v int64) {
	*(*int64)(a.fieldPointer(body)) = v
}

// GetUint64 reads a Set-tagged field.
func (a *PropertyMapAccessor) GetUint64(body []byte) uint64 {
	return *(*uint64)(a.fieldPointer(body))
}

// SetUint64 writes a Set-tagged field.
func (a *PropertyMapAccessor) SetUint64(body []byte, v uint64) {
	*(*uint64)(a.fieldPointer(body)) = v
}

// GetBool reads a Bool-tagged field.
func (a *PropertyMapAccessor) GetBool(body []byte) bool {
	return *(*int32)(a.fieldPointer(body)) != 0
}

// SetBool writes a Bool-tagged field.
func (a *PropertyMapAccessor) SetBool(body []byte, v bool) {
	var i int32
	if v {
		i = 1
	}
	*(*int32)(a.fieldPointer(body)) = i
}

// GetComplex reads a Complex-tagged field, stored as two adjacent
// float64 words (real, imaginary).
func (a *PropertyMapAccessor) GetComplex(body []byte) property.Complex {
	re := *(*float64)(a.fieldPointer(body))
	im := *(*float64)(unsafe.Pointer(&body[a.offset+8]))
	return property.Complex{Re: re, Im: im}
}

// SetComplex writes a Complex-tagged field.
func (a *PropertyMapAccessor) SetComplex(body []byte, v property.Complex) {
	*(*float64)(a.fieldPointer(body)) = v.Re
	*(*float64)(unsafe.Pointer(&body[a.offset+8])) = v.Im
}

// Descriptor returns the property this accessor was built for.
func (a *PropertyMapAccessor) Descriptor() *property.Descriptor { return a.desc }
