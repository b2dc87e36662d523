// ABOUTME: Error taxonomy for retained-size computations
// ABOUTME: Sentinels plus ReferenceAccessError for unreadable references

package walker

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUninitializedOracle is returned when a size is requested before the
	// shallow-size oracle has been supplied.
	ErrUninitializedOracle = errors.New("shallow-size oracle not configured")

	// ErrUninitializedEnumerator is returned when a retained size is requested
	// before the reference enumerator has been supplied.
	ErrUninitializedEnumerator = errors.New("reference enumerator not configured")

	// ErrInvalidPrimitiveKind is returned when the primitive size table is
	// queried with a kind outside its eight entries.
	ErrInvalidPrimitiveKind = errors.New("invalid primitive kind")

	// ErrReferenceAccess matches every *ReferenceAccessError via errors.Is.
	ErrReferenceAccess = errors.New("reference not readable")
)

// ReferenceAccessError reports a reference whose current value could not be
// read while enumerating a node.
type ReferenceAccessError struct {
	Node  string // description of the node being enumerated
	Ref   string // name of the offending reference
	Cause error
}

// NewReferenceAccessError builds a ReferenceAccessError for hosts.
func NewReferenceAccessError(node, ref string, cause error) *ReferenceAccessError {
	return &ReferenceAccessError{Node: node, Ref: ref, Cause: cause}
}

func (e *ReferenceAccessError) Error() string {
	msg := fmt.Sprintf("error determining the size of reference %q on %s", e.Ref, e.Node)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ReferenceAccessError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrReferenceAccess) hold for any access error.
func (e *ReferenceAccessError) Is(target error) bool {
	return target == ErrReferenceAccess
}
