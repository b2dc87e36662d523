// ABOUTME: Collaborator contracts consumed by the walker
// ABOUTME: Oracle, Enumerator, Classifier and the references they produce

package walker

// Shape distinguishes composites with named fields from homogeneous sequences.
type Shape uint8

const (
	Composite Shape = iota
	Sequence
)

func (s Shape) String() string {
	if s == Sequence {
		return "sequence"
	}
	return "composite"
}

// Ref is one outgoing reference of a node. Primitive references carry only a
// Kind; reference-valued ones carry the target in Value unless Nil is set.
type Ref[N any] struct {
	Name  string
	Kind  Kind
	Value N
	Nil   bool
}

// Prim returns a primitive-valued reference.
func Prim[N any](name string, k Kind) Ref[N] {
	return Ref[N]{Name: name, Kind: k}
}

// To returns a reference-valued reference pointing at n.
func To[N any](name string, n N) Ref[N] {
	return Ref[N]{Name: name, Kind: Reference, Value: n}
}

// Null returns an absent reference-valued reference.
func Null[N any](name string) Ref[N] {
	return Ref[N]{Name: name, Kind: Reference, Nil: true}
}

// Listing is the enumerated content of one node.
type Listing[N any] struct {
	Shape Shape
	// Elem is the element kind of a Sequence. A primitive Elem means the
	// node's shallow size already covers every element.
	Elem Kind
	Refs []Ref[N]
}

// Oracle returns a node's own storage footprint, excluding anything it
// references.
type Oracle[N any] interface {
	ShallowSize(n N) (uint64, error)
}

// Enumerator lists a node's outgoing references and names node identities.
// Identity must return equal keys exactly for the same underlying value.
type Enumerator[N any, K comparable] interface {
	Identity(n N) K
	Enumerate(n N) (Listing[N], error)
}

// Classifier decides whether a node is a process-wide shared instance that
// must not be charged to any owner.
type Classifier[N any] interface {
	Shared(n N) bool
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc[N any] func(n N) bool

func (f ClassifierFunc[N]) Shared(n N) bool { return f(n) }

// NoFlyweights is the classifier for hosts without shared-instance caches.
type NoFlyweights[N any] struct{}

func (NoFlyweights[N]) Shared(N) bool { return false }
