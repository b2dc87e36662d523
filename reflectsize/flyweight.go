// ABOUTME: Flyweight classifier for Go values shared process-wide
// ABOUTME: Registered singletons, unique-interned strings and static small boxes

package reflectsize

import (
	"reflect"
	"unique"
	"unsafe"
)

// staticLo and staticHi bound the runtime's table of boxed small values.
// Converting a bool or an integer below 256 to an interface points the
// interface at this table instead of allocating.
var staticLo, staticHi = staticBounds()

//go:noinline
func boxByte(b uint8) any { return b }

func dataWord(x any) uintptr {
	return uintptr((*[2]unsafe.Pointer)(unsafe.Pointer(&x))[1])
}

func staticBounds() (uintptr, uintptr) {
	lo := dataWord(boxByte(0)) &^ 7
	return lo, lo + 256*8
}

// Shared implements walker.Classifier.
func (h *Host) Shared(n Node) bool {
	switch n.shape {
	case backing, table:
		// Slices and maps are not comparable and are never shared.
		return false
	case text:
		return interned(n.v.String())
	case pointee, channel:
		return h.shared.Contains(n.id)
	case boxed:
		if !n.v.Type().Comparable() {
			return false
		}
		if h.shared.Contains(n.id) {
			return true
		}
		return staticBox(n)
	}
	return false
}

// interned reports whether s is the canonical copy held by the unique
// package. Looking it up interns the content as a side effect; the new entry
// is a clone and so never matches s.
func interned(s string) bool {
	return unsafe.StringData(unique.Make(s).Value()) == unsafe.StringData(s)
}

// staticBox reports whether a boxed bool or integer points into the static
// small-value table. Floating-point and complex boxes never do.
func staticBox(n Node) bool {
	switch n.v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return n.id.Addr >= staticLo && n.id.Addr < staticHi
	}
	return false
}
