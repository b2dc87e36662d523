// ABOUTME: Primitive value kinds and their fixed byte widths
// ABOUTME: Lookup table consulted for primitive-valued references

package walker

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind classifies a reference as one of the eight primitive kinds or as a
// reference to another node.
type Kind uint8

const (
	Invalid Kind = iota
	Boolean
	Byte
	Short
	Char
	Int
	Float
	Long
	Double
	Reference
)

var widths = [...]uint64{
	Boolean: 1,
	Byte:    1,
	Short:   2,
	Char:    2,
	Int:     4,
	Float:   4,
	Long:    8,
	Double:  8,
}

var kindNames = [...]string{
	Invalid:   "invalid",
	Boolean:   "boolean",
	Byte:      "byte",
	Short:     "short",
	Char:      "char",
	Int:       "int",
	Float:     "float",
	Long:      "long",
	Double:    "double",
	Reference: "ref",
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= Boolean && k <= Double
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// WidthOf returns the byte width of a primitive kind.
func WidthOf(k Kind) (uint64, error) {
	if !k.IsPrimitive() {
		return 0, errors.Wrapf(ErrInvalidPrimitiveKind, "width of %s", k)
	}
	return widths[k], nil
}

// ParseKind maps a kind name to a Kind. Both the canonical names and the
// sized Go scalar type names are accepted. "int" is the canonical 4-byte
// kind; Go's platform-sized int is spelled "long" or "int64".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return Boolean, nil
	case "byte", "int8", "uint8":
		return Byte, nil
	case "short", "int16":
		return Short, nil
	case "char", "uint16":
		return Char, nil
	case "int", "int32", "uint32", "rune":
		return Int, nil
	case "float", "float32":
		return Float, nil
	case "long", "int64", "uint64", "uint", "uintptr":
		return Long, nil
	case "double", "float64":
		return Double, nil
	case "ref", "reference":
		return Reference, nil
	}
	return Invalid, errors.Wrapf(ErrInvalidPrimitiveKind, "unknown kind %q", s)
}
