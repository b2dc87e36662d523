// ABOUTME: Parser interface for object-graph document formats
// ABOUTME: Defines the contract for pluggable dump parsers

package heapdump

import (
	"io"

	"github.com/prateek/sizeof/graph"
)

// Parser is the interface for object-graph document parsers
type Parser interface {
	// Name identifies the format in logs and errors
	Name() string

	// CanParse checks if this parser can handle the given format.
	// The reader is a preview of the document head; implementations must
	// not assume it holds the whole document.
	CanParse(r io.Reader) bool

	// Parse reads the document and builds a graph.
	// The reader is positioned at the start of the document.
	Parse(r io.Reader) (graph.Graph, error)
}
