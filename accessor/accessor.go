package accessor

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// Ref is an untyped reference to a struct value whose members are read
// through accessors. A Ref keeps the referenced object alive.
type Ref struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

// Of returns a Ref to the struct that instance points to.
func Of(instance any) (Ref, error) {
	if instance == nil {
		return Ref{}, defect(nil, "", "nil instance")
	}
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.Type().Elem().Kind() != reflect.Struct {
		return Ref{}, defect(v.Type(), "", "not a pointer to a struct")
	}
	if v.IsNil() {
		return Ref{}, defect(v.Type(), "", "nil pointer")
	}
	return Ref{typ: v.Type().Elem(), ptr: v.UnsafePointer()}, nil
}

// Type returns the struct type r refers to.
func (r Ref) Type() reflect.Type { return r.typ }

// Valid reports whether r refers to something.
func (r Ref) Valid() bool { return r.typ != nil && r.ptr != nil }

type member struct {
	offset uintptr
	typ    reflect.Type
}

// resolve finds name on owner, including members promoted from embedded
// structs, and returns its offset from the start of owner.
func resolve(owner reflect.Type, name string) (member, error) {
	if owner == nil || owner.Kind() != reflect.Struct {
		return member{}, defect(owner, name, "owner is not a struct")
	}
	sf, ok := owner.FieldByName(name)
	if !ok {
		return member{}, defect(owner, name, "no such member")
	}
	var offset uintptr
	t := owner
	for depth, i := range sf.Index {
		f := t.Field(i)
		offset += f.Offset
		if depth == len(sf.Index)-1 {
			break
		}
		if f.Type.Kind() != reflect.Struct {
			return member{}, defect(owner, name, "promoted through embedded %s", f.Type)
		}
		t = f.Type
	}
	return member{offset: offset, typ: sf.Type}, nil
}

func check(owner reflect.Type, name string, r Ref) error {
	if r.typ != owner {
		return defect(owner, name, "accessor applied to %s", typeName(r.typ))
	}
	if r.ptr == nil {
		return defect(owner, name, "nil reference")
	}
	return nil
}

// Field reads one member of type T.
type Field[T any] struct {
	owner  reflect.Type
	name   string
	offset uintptr
	read   func(unsafe.Pointer) T
}

// FieldOf returns the accessor for member name of owner read as T.
//
// The member must have type T, share T's basic kind (a named integer read as
// its underlying integer), or implement T when T is an interface.
func FieldOf[T any](c *Cache, owner reflect.Type, name string) (*Field[T], error) {
	want := reflect.TypeFor[T]()
	v, err := c.load(key{owner: owner, member: name, kind: kindField, result: want}, func() (any, error) {
		m, err := resolve(owner, name)
		if err != nil {
			return nil, err
		}
		read, ok := reader[T](m.typ, want)
		if !ok {
			return nil, defect(owner, name, "member type %s is not readable as %s", m.typ, want)
		}
		return &Field[T]{owner: owner, name: name, offset: m.offset, read: read}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Field[T]), nil
}

// Get reads the member from r.
func (f *Field[T]) Get(r Ref) (T, error) {
	if err := check(f.owner, f.name, r); err != nil {
		var zero T
		return zero, err
	}
	return f.read(unsafe.Add(r.ptr, f.offset)), nil
}

func reader[T any](have, want reflect.Type) (func(unsafe.Pointer) T, bool) {
	switch {
	case have == want, sameScalar(have, want):
		return func(p unsafe.Pointer) T { return *(*T)(p) }, true
	case want.Kind() == reflect.Interface && have.Implements(want):
		return func(p unsafe.Pointer) T {
			v, _ := reflect.NewAt(have, p).Elem().Interface().(T)
			return v
		}, true
	}
	return nil, false
}

func sameScalar(have, want reflect.Type) bool {
	if have.Kind() != want.Kind() {
		return false
	}
	switch have.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Nested follows a member that is itself a struct: inline, behind a
// pointer, or held by an interface.
type Nested struct {
	owner  reflect.Type
	name   string
	offset uintptr
	typ    reflect.Type
}

// NestedOf returns the accessor for the struct-valued member name of owner.
func NestedOf(c *Cache, owner reflect.Type, name string) (*Nested, error) {
	v, err := c.load(key{owner: owner, member: name, kind: kindNested}, func() (any, error) {
		m, err := resolve(owner, name)
		if err != nil {
			return nil, err
		}
		switch {
		case m.typ.Kind() == reflect.Struct,
			m.typ.Kind() == reflect.Pointer && m.typ.Elem().Kind() == reflect.Struct,
			m.typ.Kind() == reflect.Interface:
		default:
			return nil, defect(owner, name, "member type %s does not hold a struct", m.typ)
		}
		return &Nested{owner: owner, name: name, offset: m.offset, typ: m.typ}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Nested), nil
}

// Get returns a Ref to the nested struct. A nil pointer or interface is a
// defect: the layout promised a value there.
func (n *Nested) Get(r Ref) (Ref, error) {
	if err := check(n.owner, n.name, r); err != nil {
		return Ref{}, err
	}
	p := unsafe.Add(r.ptr, n.offset)
	switch n.typ.Kind() {
	case reflect.Struct:
		return Ref{typ: n.typ, ptr: p}, nil
	case reflect.Pointer:
		q := *(*unsafe.Pointer)(p)
		if q == nil {
			return Ref{}, defect(n.owner, n.name, "nil %s", n.typ)
		}
		return Ref{typ: n.typ.Elem(), ptr: q}, nil
	}
	v := reflect.NewAt(n.typ, p).Elem()
	if v.IsNil() {
		return Ref{}, defect(n.owner, n.name, "nil %s", n.typ)
	}
	return Of(v.Interface())
}

// Index reads one element of a sequence-valued member.
type Index struct {
	owner    reflect.Type
	name     string
	offset   uintptr
	typ      reflect.Type
	elem     reflect.Type
	elemSize uintptr
	indirect bool
}

type sliceHeader struct {
	data unsafe.Pointer
	len  int
	cap  int
}

// IndexOf returns the accessor for elements of member name of owner, which
// must be a slice or array of structs or of pointers to structs.
func IndexOf(c *Cache, owner reflect.Type, name string) (*Index, error) {
	v, err := c.load(key{owner: owner, member: name, kind: kindIndex}, func() (any, error) {
		m, err := resolve(owner, name)
		if err != nil {
			return nil, err
		}
		if k := m.typ.Kind(); k != reflect.Slice && k != reflect.Array {
			return nil, defect(owner, name, "member type %s is not a sequence", m.typ)
		}
		x := &Index{
			owner:    owner,
			name:     name,
			offset:   m.offset,
			typ:      m.typ,
			elemSize: m.typ.Elem().Size(),
		}
		switch e := m.typ.Elem(); {
		case e.Kind() == reflect.Struct:
			x.elem = e
		case e.Kind() == reflect.Pointer && e.Elem().Kind() == reflect.Struct:
			x.elem = e.Elem()
			x.indirect = true
		default:
			return nil, defect(owner, name, "element type %s is not a struct", e)
		}
		return x, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

func (x *Index) elements(r Ref) (unsafe.Pointer, int) {
	p := unsafe.Add(r.ptr, x.offset)
	if x.typ.Kind() == reflect.Array {
		return p, x.typ.Len()
	}
	h := (*sliceHeader)(p)
	return h.data, h.len
}

// Elem returns the struct type of the elements.
func (x *Index) Elem() reflect.Type { return x.elem }

// Len returns the number of elements in the sequence.
func (x *Index) Len(r Ref) (int, error) {
	if err := check(x.owner, x.name, r); err != nil {
		return 0, err
	}
	_, n := x.elements(r)
	return n, nil
}

// Get returns a Ref to element i.
func (x *Index) Get(r Ref, i int) (Ref, error) {
	if err := check(x.owner, x.name, r); err != nil {
		return Ref{}, err
	}
	base, n := x.elements(r)
	if i < 0 || i >= n {
		return Ref{}, errors.Wrapf(ErrIndexOutOfRange, "%s.%s[%d] with length %d", x.owner, x.name, i, n)
	}
	p := unsafe.Add(base, uintptr(i)*x.elemSize)
	if x.indirect {
		p = *(*unsafe.Pointer)(p)
		if p == nil {
			return Ref{}, defect(x.owner, x.name, "nil element %d", i)
		}
	}
	return Ref{typ: x.elem, ptr: p}, nil
}
