package module

import (
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/object"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/unit"
)

// Handle is a resolved property reference: the object it belongs to,
// its descriptor (carrying type/offset/unit), and the byte-offset
// accessor into that object's class body (spec §6's get_property
// result, and the family of typed get_double/get_complex/get_int
// accessors built on top of it).
type Handle struct {
	Object *object.Object
	Desc   *property.Descriptor

	accessor *class.PropertyMapAccessor
}

// GetProperty resolves "name" or the namespaced "object.name" form
// against store, starting from obj when the name carries no namespace
// (spec §6: "get_property(obj, \"name\") or get_property(obj,
// \"object.name\") (namespaced)").
func GetProperty(store *object.Store, obj *object.Object, name string) (*Handle, error) {
	target := obj
	propName := name
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		objName, rest := name[:idx], name[idx+1:]
		ref, ok := store.ByName(objName)
		if !ok {
			return nil, kernelerr.Wrapf(kernelerr.ErrNotFound, "object %q not found", objName)
		}
		target, propName = ref, rest
	}
	if target.Class == nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "object %d has no class", target.ID)
	}
	d := target.Class.FindProperty(propName, nil)
	if d == nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrNotFound, "property %q not found on class %s", propName, target.Class.Name)
	}
	a, err := class.NewAccessor(d, uintptr(len(target.Body)))
	if err != nil {
		return nil, err
	}
	return &Handle{Object: target, Desc: d, accessor: a}, nil
}

func (h *Handle) wrongType(want string) error {
	return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q is not a %s", h.Desc.Name, want)
}

// notifyBefore and notifyAfter run the descriptor's notify callback, if any, rendering v as
// its string form the way the original passes the pre-converted value
// to the notify chain. When the property carries FlagNotifyOverride the
// callback runs before the write and a false return vetoes it;
// otherwise it runs after, purely as an observer (spec §4.2, §6).
func (h *Handle) notifyBefore(rendered string) error {
	if h.Desc.Notify == nil || h.Desc.Flags&property.FlagNotifyOverride == 0 {
		return nil
	}
	if !h.Desc.Notify(h.Object, rendered) {
		return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q write vetoed by notify", h.Desc.Name)
	}
	return nil
}

func (h *Handle) notifyAfter(rendered string) {
	if h.Desc.Notify == nil || h.Desc.Flags&property.FlagNotifyOverride != 0 {
		return
	}
	h.Desc.Notify(h.Object, rendered)
}

// GetDouble reads a Double/Real/Float-typed property.
func (h *Handle) GetDouble() (float64, error) {
	switch h.Desc.Type {
	case property.Double, property.Real, property.Float:
		return h.accessor.GetFloat64(h.Object.Body), nil
	default:
		return 0, h.wrongType("real type")
	}
}

// SetDouble writes a Double/Real/Float-typed property, honoring the
// notify chain (spec §6: "Setters honor the notify chain and unit
// conversion"); unit conversion itself is the caller's responsibility
// via unit.Convert, since a bare float64 carries no unit tag of its own.
func (h *Handle) SetDouble(v float64) error {
	switch h.Desc.Type {
	case property.Double, property.Real, property.Float:
	default:
		return h.wrongType("real type")
	}
	rendered := strconv.FormatFloat(v, 'g', -1, 64)
	if err := h.notifyBefore(rendered); err != nil {
		return err
	}
	h.accessor.SetFloat64(h.Object.Body, v)
	h.notifyAfter(rendered)
	return nil
}

// GetComplex reads a Complex-typed property.
func (h *Handle) GetComplex() (property.Complex, error) {
	if h.Desc.Type != property.Complex {
		return property.Complex{}, h.wrongType("complex")
	}
	return h.accessor.GetComplex(h.Object.Body), nil
}

// SetComplex writes a Complex-typed property, honoring the notify chain.
func (h *Handle) SetComplex(v property.Complex) error {
	if h.Desc.Type != property.Complex {
		return h.wrongType("complex")
	}
	rendered := strconv.FormatFloat(v.Re, 'g', -1, 64) + "+" + strconv.FormatFloat(v.Im, 'g', -1, 64) + "j"
	if err := h.notifyBefore(rendered); err != nil {
		return err
	}
	h.accessor.SetComplex(h.Object.Body, v)
	h.notifyAfter(rendered)
	return nil
}

// GetInt reads an Int16/Int32/Int64/Enumeration-typed property.
func (h *Handle) GetInt() (int64, error) {
	switch h.Desc.Type {
	case property.Int16, property.Int32, property.Int64, property.Enumeration:
		return h.accessor.GetInt64(h.Object.Body), nil
	default:
		return 0, h.wrongType("integer type")
	}
}

// SetInt writes an Int16/Int32/Int64/Enumeration-typed property,
// honoring the notify chain.
func (h *Handle) SetInt(v int64) error {
	switch h.Desc.Type {
	case property.Int16, property.Int32, property.Int64, property.Enumeration:
	default:
		return h.wrongType("integer type")
	}
	rendered := strconv.FormatInt(v, 10)
	if err := h.notifyBefore(rendered); err != nil {
		return err
	}
	h.accessor.SetInt64(h.Object.Body, v)
	h.notifyAfter(rendered)
	return nil
}

// GetBool reads a Bool-typed property.
func (h *Handle) GetBool() (bool, error) {
	if h.Desc.Type != property.Bool {
		return false, h.wrongType("bool")
	}
	return h.accessor.GetBool(h.Object.Body), nil
}

// SetBool writes a Bool-typed property, honoring the notify chain.
func (h *Handle) SetBool(v bool) error {
	if h.Desc.Type != property.Bool {
		return h.wrongType("bool")
	}
	rendered := strconv.FormatBool(v)
	if err := h.notifyBefore(rendered); err != nil {
		return err
	}
	h.accessor.SetBool(h.Object.Body, v)
	h.notifyAfter(rendered)
	return nil
}

// String renders the property's current value as text, scaling into
// want when both it and the property's declared unit are set (spec
// §4.2's to_string, reached through get_property rather than a
// separate entry point).
func (h *Handle) String(want unit.Unit) (string, error) {
	codec, err := property.Lookup(h.Desc)
	if err != nil {
		return "", err
	}
	v, err := h.value()
	if err != nil {
		return "", err
	}
	return codec.ToString(h.Desc, v, want)
}

// value extracts this property's current storage as the interface{}
// shape property.Codec expects, for the scalar types the accessor
// covers directly.
func (h *Handle) value() (interface{}, error) {
	switch h.Desc.Type {
	case property.Double, property.Real, property.Float:
		return h.accessor.GetFloat64(h.Object.Body), nil
	case property.Complex:
		return h.accessor.GetComplex(h.Object.Body), nil
	case property.Int16, property.Int32, property.Int64, property.Enumeration:
		return h.accessor.GetInt64(h.Object.Body), nil
	case property.Bool:
		return h.accessor.GetBool(h.Object.Body), nil
	default:
		return nil, kernelerr.Wrapf(kernelerr.ErrNotImplemented, "property %q: type %s has no generic value accessor", h.Desc.Name, h.Desc.Type)
	}
}
