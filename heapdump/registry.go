// ABOUTME: Registry for object-graph document parsers
// ABOUTME: Manages parser plugins and selects the parser for a document

package heapdump

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/prateek/sizeof/graph"
)

// previewSize is how much of a document parsers see when detecting format
const previewSize = 4096

var (
	// ErrNoParser is returned when no parser can handle the document format
	ErrNoParser = errors.New("no parser found for dump format")

	// ErrInvalidDump is returned when a document parses but describes an
	// inconsistent graph
	ErrInvalidDump = errors.New("invalid dump")
)

// parserRegistry holds registered parsers
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

// Global registry instance
var registry = &parserRegistry{
	parsers: make([]Parser, 0),
}

// Register adds a parser to the registry. Parsers are tried in registration
// order.
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a document and returns its graph, using the first registered
// parser that recognises the document head
func Open(r io.Reader) (graph.Graph, error) {
	br := bufio.NewReaderSize(r, previewSize)
	head, err := br.Peek(previewSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.Wrap(err, "reading dump header")
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, parser := range registry.parsers {
		if !parser.CanParse(bytes.NewReader(head)) {
			continue
		}
		g, err := parser.Parse(br)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s dump", parser.Name())
		}
		return g, nil
	}

	return nil, ErrNoParser
}

// OpenFile opens the named document and returns its graph
func OpenFile(path string) (graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dump")
	}
	defer f.Close()

	g, err := Open(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return g, nil
}
