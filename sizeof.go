// ABOUTME: Root package exposing shallow and retained sizes of Go values
// ABOUTME: Thin entry points over the reflection host with default settings

// Package sizeof computes approximate memory footprints of Go values. It
// reports the shallow size of a single value and the retained size of a value
// together with everything reachable from it, skipping values shared
// process-wide such as interned strings and the runtime's static small-value
// boxes.
package sizeof

import (
	"github.com/prateek/sizeof/reflectsize"
	"github.com/prateek/sizeof/walker"
)

// Version is the semantic version of the sizeof tool
const Version = "0.2.0-dev"

var defaultHost = reflectsize.New()

// ShallowSize returns the storage owned by v alone.
func ShallowSize(v any) (uint64, error) {
	return defaultHost.SizeOf(v)
}

// RetainedSize returns the storage retained by v and everything it reaches.
func RetainedSize(v any) (uint64, error) {
	return defaultHost.RetainedSize(v)
}

// Walk is RetainedSize with the traversal counters.
func Walk(v any) (walker.Report, error) {
	return defaultHost.Walk(v)
}
