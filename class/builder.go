package class

import (
	"fmt"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/property"
	"github.com/rob-gra/gridsim-core/unit"
)

// Builder replaces the original's variadic define_map mini-DSL (spec
// §4.3) with a method-chaining build: each call does immediately the
// validation the original's meta-token scan deferred to a single pass
// over a va_list, so a build-time mistake (e.g. .Keyword after a
// non-enum/set property) surfaces at the call site instead of being
// silently ignored.
type Builder struct {
	reg     *Registry
	class   *Class
	lastErr error
	lastProp *property.Descriptor
	warn    func(msg string)
}

// Register starts building a class: module owner, name (<=63 chars),
// body size in bytes, and the pass bitmask it implements.
func Register(reg *Registry, warn func(msg string), module, name string, size uintptr, passes PassConfig) *Builder {
	b := &Builder{reg: reg, warn: warn}
	if len(name) > 63 {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "class name %q exceeds 63 characters", name)
		return b
	}
	if _, exists := reg.Lookup(module, name); exists {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "module %q already registered class %q", module, name)
		return b
	}
	b.class = &Class{
		Module: module, Name: name, Size: size, PassConfig: passes,
		propertyByName:   make(map[string]*property.Descriptor),
		functions:        make(map[string]Function),
		deprecatedWarned: make(map[string]bool),
	}
	return b
}

// Property publishes a new field, returning the Builder for chaining.
// Subsequent .Access/.Flags/.Units/.Keyword/.Description calls modify
// this property until the next .Property call, mirroring the way the
// original's meta-tokens apply to "the just-published property".
func (b *Builder) Property(name string, typ property.Type, offset uintptr) *Builder {
	if b.lastErr != nil {
		return b
	}
	if len(name) > 63 {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property name %q exceeds 63 characters", name)
		return b
	}
	if headerFieldNames[name] {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property name %q collides with an object header field", name)
		return b
	}
	if _, exists := b.class.propertyByName[name]; exists {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "property %q already defined on class %q", name, b.class.Name)
		return b
	}
	d := &property.Descriptor{
		Name: name, Type: typ, Offset: offset, Width: typ.Width(),
		Access: property.Public,
	}
	b.class.properties = append(b.class.properties, d)
	b.class.propertyByName[name] = d
	b.lastProp = d
	return b
}

// Access sets the access class of the most recently published property.
func (b *Builder) Access(a property.Access) *Builder {
	if b.lastErr == nil && b.lastProp != nil {
		b.lastProp.Access = a
	}
	return b
}

// Size overrides the width of the most recently published property
// (used for sized strings/arrays whose width is not their type's
// default, matching the SIZE meta-token).
func (b *Builder) Size(width int) *Builder {
	if b.lastErr == nil && b.lastProp != nil {
		b.lastProp.Width = width
	}
	return b
}

// Flags OR's flag bits into the most recently published property.
func (b *Builder) Flags(f property.Flags) *Builder {
	if b.lastErr == nil && b.lastProp != nil {
		b.lastProp.Flags |= f
	}
	return b
}

// Deprecated marks the most recently published property deprecated.
func (b *Builder) Deprecated() *Builder { return b.Flags(property.FlagDeprecated) }

// Description attaches a human-readable description to the most
// recently published property.
func (b *Builder) Description(s string) *Builder {
	if b.lastErr == nil && b.lastProp != nil {
		b.lastProp.Description = s
	}
	return b
}

// Units attaches a unit to the most recently published property; only
// double/complex properties may carry one (property.Type.HasUnit).
func (b *Builder) Units(u unit.Unit) *Builder {
	if b.lastErr != nil || b.lastProp == nil {
		return b
	}
	if !b.lastProp.Type.HasUnit() {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"property %q cannot have a unit because it is not a double or complex value", b.lastProp.Name)
		return b
	}
	b.lastProp.Unit = u
	return b
}

// Keyword attaches an enumeration/set keyword to the most recently
// published property; valid only after an Enumeration or Set property.
func (b *Builder) Keyword(name string, value uint64) *Builder {
	if b.lastErr != nil || b.lastProp == nil {
		return b
	}
	if b.lastProp.Type != property.Enumeration && b.lastProp.Type != property.Set {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"KEYWORD %q is only valid after an enumeration or set property, not %q (%s)", name, b.lastProp.Name, b.lastProp.Type)
		return b
	}
	b.lastProp.Keywords = append(b.lastProp.Keywords, property.Keyword{Name: name, Value: value})
	return b
}

// Notify attaches a notify callback to the most recently published
// property, setting FlagNotify (and FlagNotifyOverride when override is
// true) to match HAS_NOTIFY / HAS_NOTIFY_OVERRIDE.
func (b *Builder) Notify(fn property.NotifyFunc, override bool) *Builder {
	if b.lastErr != nil || b.lastProp == nil {
		return b
	}
	b.lastProp.Notify = fn
	b.lastProp.Flags |= property.FlagNotify
	if override {
		b.lastProp.Flags |= property.FlagNotifyOverride
	}
	return b
}

// Delegate installs a module-supplied Codec for a Delegated property.
func (b *Builder) Delegate(codec property.Codec) *Builder {
	if b.lastErr == nil && b.lastProp != nil {
		b.lastProp.Delegate = codec
	}
	return b
}

// Extend grows the class body by n bytes (EXTEND/EXTENDBY), returning
// the offset of the newly added region.
func (b *Builder) Extend(n uintptr) (uintptr, *Builder) {
	if b.lastErr != nil {
		return 0, b
	}
	offset := b.class.Size
	b.class.Size += n
	return offset, b
}

// Inherit sets this class's parent, enforcing: the parent exists in the
// named module, is not self, and — when the parent sets
// PCUnsafeOverrideOmit and the child does not opt into
// PCParentOverrideOmit — warns about any pass the parent implements but
// the child silently suppresses (INHERIT's rules, spec §4.3). A parent
// without PCUnsafeOverrideOmit produces no such warnings.
func (b *Builder) Inherit(parentModule, parentName string) *Builder {
	if b.lastErr != nil {
		return b
	}
	if b.class.Parent != nil {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument,
			"class %q already inherits properties from class %q", b.class.Name, b.class.Parent.Name)
		return b
	}
	parent, ok := b.reg.Lookup(parentModule, parentName)
	if !ok {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrNotFound, "parent class %q is not defined", parentName)
		return b
	}
	if parent == b.class {
		b.lastErr = kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "class %q attempted to inherit from itself", b.class.Name)
		return b
	}
	b.class.Parent = parent

	// noOverride: passes the parent implements (p) that the child does
	// not (q); parent bool-implies child is ~p|q, so the suppressed set
	// is its complement — the original's "no_override = ~(~p|q)".
	noOverride := parent.PassConfig &^ b.class.PassConfig
	if parent.PassConfig&PCUnsafeOverrideOmit != 0 && b.class.PassConfig&PCParentOverrideOmit == 0 {
		for _, pass := range []struct {
			bit  PassConfig
			name string
		}{{PCPreTopDown, "PRETOPDOWN"}, {PCBottomUp, "BOTTOMUP"}, {PCPostTopDown, "POSTTOPDOWN"}} {
			if noOverride&pass.bit != 0 && b.warn != nil {
				b.warn(fmt.Sprintf("class %q suppresses parent class %q %s sync behavior by omitting override",
					b.class.Name, parent.Name, pass.name))
			}
		}
	}
	return b
}

// Function publishes a named operation on the class's function
// dictionary (define_function).
func (b *Builder) Function(name string, fn Function) *Builder {
	if b.lastErr != nil {
		return b
	}
	b.class.functions[name] = fn
	return b
}

// Build finalizes registration, returning the Class or the first error
// encountered during the chain — matching the original's "any null is
// fatal" contract (spec §4.3's failure semantics), except the kind is
// reported instead of left to a global errno.
func (b *Builder) Build() (*Class, error) {
	if b.lastErr != nil {
		return nil, b.lastErr
	}
	b.reg.register(b.class)
	return b.class, nil
}
