// ABOUTME: Tests for the root package entry points and version metadata
// ABOUTME: Checks that the defaults agree with the reflection host

package sizeof_test

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/sizeof"
)

type node struct {
	id   int64
	next *node
}

func TestVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(sizeof.Version, "0."), "got %q", sizeof.Version)
}

func TestEntryPoints(t *testing.T) {
	tail := &node{id: 2}
	head := &node{id: 1, next: tail}
	tail.next = head

	shallow, err := sizeof.ShallowSize(head)
	require.NoError(t, err)
	assert.Equal(t, uint64(unsafe.Sizeof(node{})), shallow)

	retained, err := sizeof.RetainedSize(head)
	require.NoError(t, err)
	// Two nodes plus the width of each id field.
	assert.Equal(t, 2*shallow+16, retained)

	report, err := sizeof.Walk(head)
	require.NoError(t, err)
	assert.Equal(t, retained, report.Total)
	assert.Equal(t, 2, report.Nodes)
}

func TestNil(t *testing.T) {
	got, err := sizeof.RetainedSize(nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}
