// ABOUTME: Nodes and identities for sizing live Go values through reflection
// ABOUTME: Maps pointers, slices, strings, maps, channels and boxed values to nodes

package reflectsize

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/prateek/sizeof/walker"
)

// shape says which storage a Node stands for.
type shape uint8

const (
	pointee shape = iota // target of a pointer
	backing              // backing array of a slice
	text                 // bytes of a string
	table                // map
	channel              // channel
	boxed                // interface payload stored out of line
)

var shapeNames = [...]string{"pointee", "backing", "text", "table", "channel", "boxed"}

func (s shape) String() string { return shapeNames[s] }

// Identity names one piece of storage. Two nodes with equal identities are
// the same storage.
type Identity struct {
	Addr uintptr
	Type reflect.Type
	Len  int
}

// Node is a piece of storage reachable from a root value.
type Node struct {
	v     reflect.Value
	shape shape
	id    Identity
}

// Type returns the Go type of the value the node stands for.
func (n Node) Type() reflect.Type { return n.v.Type() }

func (n Node) String() string {
	return fmt.Sprintf("%s %s@%#x", n.shape, n.v.Type(), n.id.Addr)
}

var stringType = reflect.TypeOf("")

// lister flattens inline storage into references. at tracks the reference
// being read so a failed read can be attributed.
type lister struct {
	refs []walker.Ref[Node]
	at   string
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

func index(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// inline appends the references held by v, which is stored inside the
// storage of the node being listed.
func (l *lister) inline(name string, v reflect.Value) {
	l.at = name
	switch v.Kind() {
	case reflect.Bool:
		l.prim(name, walker.Boolean)
	case reflect.Int8, reflect.Uint8:
		l.prim(name, walker.Byte)
	case reflect.Int16:
		l.prim(name, walker.Short)
	case reflect.Uint16:
		l.prim(name, walker.Char)
	case reflect.Int32, reflect.Uint32:
		l.prim(name, walker.Int)
	case reflect.Float32:
		l.prim(name, walker.Float)
	case reflect.Int, reflect.Uint, reflect.Int64, reflect.Uint64, reflect.Uintptr:
		l.prim(name, walker.Long)
	case reflect.Float64:
		l.prim(name, walker.Double)
	case reflect.Complex64:
		l.prim(name+".real", walker.Float)
		l.prim(name+".imag", walker.Float)
	case reflect.Complex128:
		l.prim(name+".real", walker.Double)
		l.prim(name+".imag", walker.Double)
	case reflect.Array:
		// Reference-free arrays are already covered by the owner's size.
		if !traversable(v.Type()) {
			return
		}
		for i := 0; i < v.Len(); i++ {
			l.inline(index(name, i), v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			l.inline(join(name, t.Field(i).Name), v.Field(i))
		}
	case reflect.Interface:
		l.iface(name, v)
	case reflect.Pointer, reflect.Slice, reflect.String, reflect.Map, reflect.Chan:
		if n, ok := nodeOf(v); ok {
			l.refs = append(l.refs, walker.To(name, n))
		} else {
			l.refs = append(l.refs, walker.Null[Node](name))
		}
	}
	// Func and UnsafePointer are opaque: their targets have no known layout.
}

func (l *lister) prim(name string, k walker.Kind) {
	l.refs = append(l.refs, walker.Prim[Node](name, k))
}

// iface handles an interface-typed slot. Pointer-shaped payloads live in the
// interface word itself; anything else is boxed out of line and becomes its
// own node.
func (l *lister) iface(name string, v reflect.Value) {
	if v.IsNil() {
		l.refs = append(l.refs, walker.Null[Node](name))
		return
	}
	e := v.Elem()
	if directIface(e.Type()) {
		l.inline(name, e)
		return
	}
	// A copied interface, such as a map entry, keeps the data word of the
	// original, so both forms name the same box.
	var data unsafe.Pointer
	if v.CanAddr() {
		data = (*[2]unsafe.Pointer)(unsafe.Pointer(v.UnsafeAddr()))[1]
	} else {
		data = unsafe.Pointer(v.InterfaceData()[1])
	}
	l.refs = append(l.refs, walker.To(name, boxedNode(e.Type(), data)))
}

func boxedNode(t reflect.Type, data unsafe.Pointer) Node {
	return Node{
		v:     reflect.NewAt(t, data).Elem(),
		shape: boxed,
		id:    Identity{Addr: uintptr(data), Type: t},
	}
}

// nodeOf returns the node a reference-kind value points at. It reports false
// for nil references and for references to empty storage.
func nodeOf(v reflect.Value) (Node, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return Node{}, false
		}
		return Node{
			v:     v.Elem(),
			shape: pointee,
			id:    Identity{Addr: v.Pointer(), Type: v.Type().Elem()},
		}, true
	case reflect.Slice:
		if v.IsNil() || v.Cap() == 0 {
			return Node{}, false
		}
		return Node{
			v:     v,
			shape: backing,
			id:    Identity{Addr: v.Pointer(), Type: v.Type().Elem(), Len: v.Cap()},
		}, true
	case reflect.String:
		if v.Len() == 0 {
			return Node{}, false
		}
		s := v.String()
		return Node{
			v:     v,
			shape: text,
			id:    Identity{Addr: uintptr(unsafe.Pointer(unsafe.StringData(s))), Type: stringType, Len: len(s)},
		}, true
	case reflect.Map:
		if v.IsNil() {
			return Node{}, false
		}
		return Node{v: v, shape: table, id: Identity{Addr: v.Pointer(), Type: v.Type()}}, true
	case reflect.Chan:
		if v.IsNil() {
			return Node{}, false
		}
		return Node{v: v, shape: channel, id: Identity{Addr: v.Pointer(), Type: v.Type()}}, true
	}
	return Node{}, false
}

// rootNode returns the node standing for a value handed in by a caller.
// Pointer-shaped values stand for their target; other values stand for the
// box the interface conversion placed them in.
func rootNode(x any) (Node, bool) {
	if x == nil {
		return Node{}, false
	}
	l := &lister{}
	l.iface("", reflect.ValueOf(&x).Elem())
	if len(l.refs) != 1 || l.refs[0].Kind != walker.Reference || l.refs[0].Nil {
		return Node{}, false
	}
	return l.refs[0].Value, true
}

// traversable reports whether values of t can hold references the walker
// follows.
func traversable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.String, reflect.Map, reflect.Chan, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && traversable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if traversable(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// directIface mirrors the compiler's rule for types stored directly in an
// interface's data word.
func directIface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() == 1 && directIface(t.Elem())
	case reflect.Struct:
		return t.NumField() == 1 && directIface(t.Field(0).Type)
	}
	return false
}

// kindOf returns the walker kind for scalar element types and Byte for
// reference-free composites, whose storage is plain bytes.
func kindOf(t reflect.Type) walker.Kind {
	l := &lister{}
	l.inline("", reflect.Zero(t))
	if len(l.refs) == 1 && l.refs[0].Kind.IsPrimitive() {
		return l.refs[0].Kind
	}
	return walker.Byte
}
