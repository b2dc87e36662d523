// ABOUTME: Core data types for the object graph
// ABOUTME: Defines Object, Field, ObjID, and Roots structures

package graph

import "github.com/prateek/sizeof/walker"

// ObjID is a unique identifier for an object. Zero is the nil reference.
type ObjID uint64

// Field is one outgoing edge of an object: a primitive slot or a reference
// to another object
type Field struct {
	Name string      // Field name, or "[i]" for sequence elements
	Kind walker.Kind // Primitive kind, or walker.Reference
	To   ObjID       // Target of a reference field; 0 means nil
}

// Object represents a single object in the graph
type Object struct {
	ID     ObjID       // Unique identifier
	Type   string      // Type name (e.g. "string", "*MyStruct")
	Size   uint64      // Shallow size in bytes
	Elem   walker.Kind // Element kind for sequences; walker.Invalid for composites
	Fields []Field     // Outgoing edges in declaration order
	Shared bool        // Process-wide shared instance, never charged to an owner
}

// IsSequence reports whether the object is a homogeneous sequence
func (o *Object) IsSequence() bool {
	return o.Elem != walker.Invalid
}

// Ptrs returns the non-nil reference targets of the object
func (o *Object) Ptrs() []ObjID {
	var ptrs []ObjID
	for _, f := range o.Fields {
		if f.Kind == walker.Reference && f.To != 0 {
			ptrs = append(ptrs, f.To)
		}
	}
	return ptrs
}

// Roots represents the set of root objects named by a document
type Roots struct {
	IDs []ObjID // Object IDs that are roots
}
