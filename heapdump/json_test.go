// ABOUTME: Tests for the JSON object-graph parser
// ABOUTME: Validates document parsing, format detection and error handling

package heapdump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/sizeof/graph"
	"github.com/prateek/sizeof/walker"
)

func TestJSONParse(t *testing.T) {
	jsonData := `{
		"objects": [
			{"id": 1, "type": "R", "size": 16,
			 "fields": [{"name": "a", "kind": "int"}, {"name": "b", "ref": 2}, {"name": "c", "ref": null}]},
			{"id": 2, "type": "[]*T", "size": 24, "elem": "ref", "items": [3, 0]},
			{"id": 3, "type": "[]int32", "size": 40, "elem": "int32"},
			{"id": 4, "type": "string", "size": 2, "shared": true}
		],
		"roots": [1]
	}`

	g, err := (&JSONParser{}).Parse(strings.NewReader(jsonData))
	require.NoError(t, err)
	assert.Equal(t, 4, g.NumObjects())

	obj1 := g.GetObject(1)
	require.NotNil(t, obj1)
	assert.Equal(t, "R", obj1.Type)
	assert.Equal(t, uint64(16), obj1.Size)
	assert.False(t, obj1.IsSequence())
	assert.Equal(t, []graph.Field{
		{Name: "a", Kind: walker.Int},
		{Name: "b", Kind: walker.Reference, To: 2},
		{Name: "c", Kind: walker.Reference},
	}, obj1.Fields)

	obj2 := g.GetObject(2)
	require.NotNil(t, obj2)
	assert.Equal(t, walker.Reference, obj2.Elem)
	assert.Equal(t, []graph.Field{
		{Name: "[0]", Kind: walker.Reference, To: 3},
		{Name: "[1]", Kind: walker.Reference},
	}, obj2.Fields)

	assert.Equal(t, walker.Int, g.GetObject(3).Elem)
	assert.True(t, g.GetObject(4).Shared)
	assert.Equal(t, []graph.ObjID{1}, g.GetRoots().IDs)
}

func TestJSONCanParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "Valid JSON object",
			content: `{"objects": [], "roots": []}`,
			want:    true,
		},
		{
			name:    "Objects key after roots",
			content: `{"roots": [1, 2], "objects": [{"id": 1}]}`,
			want:    true,
		},
		{
			name:    "Truncated preview",
			content: `{"objects": [{"id": 1, "type": "R", "si`,
			want:    true,
		},
		{
			name:    "Preview ends inside leading roots",
			content: `{"roots": [1, 2, 3, 4`,
			want:    true,
		},
		{
			name:    "Preview ends inside a key",
			content: `{"roots": [1], "obj`,
			want:    true,
		},
		{
			name:    "Syntax error before objects",
			content: `{"roots": [1,,], "objects": []}`,
			want:    false,
		},
		{
			name:    "Objects is not an array",
			content: `{"objects": "nope"}`,
			want:    false,
		},
		{
			name:    "Non-JSON",
			content: `not json at all`,
			want:    false,
		},
		{
			name:    "JSON without objects key",
			content: `{"data": []}`,
			want:    false,
		},
		{
			name:    "Top-level array",
			content: `[{"objects": []}]`,
			want:    false,
		},
		{
			name:    "Empty",
			content: ``,
			want:    false,
		},
	}

	parser := &JSONParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.CanParse(strings.NewReader(tt.content)))
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool // error matches ErrInvalidDump
	}{
		{
			name:    "Invalid JSON syntax",
			content: `{"objects": [}`,
		},
		{
			name:    "Wrong type for objects",
			content: `{"objects": "not an array", "roots": []}`,
		},
		{
			name:    "Missing ID",
			content: `{"objects": [{"type": "test"}]}`,
			invalid: true,
		},
		{
			name:    "Duplicate ID",
			content: `{"objects": [{"id": 1}, {"id": 1}]}`,
			invalid: true,
		},
		{
			name:    "Unknown kind",
			content: `{"objects": [{"id": 1, "fields": [{"name": "a", "kind": "quad"}]}]}`,
			invalid: true,
		},
		{
			name:    "Unknown element kind",
			content: `{"objects": [{"id": 1, "elem": "quad"}]}`,
			invalid: true,
		},
		{
			name:    "Field without kind or ref",
			content: `{"objects": [{"id": 1, "fields": [{"name": "a"}]}]}`,
			invalid: true,
		},
		{
			name:    "Field without name",
			content: `{"objects": [{"id": 1, "fields": [{"ref": 1}]}]}`,
			invalid: true,
		},
		{
			name:    "Primitive field with ref",
			content: `{"objects": [{"id": 1, "fields": [{"name": "a", "kind": "int", "ref": 1}]}]}`,
			invalid: true,
		},
		{
			name:    "Items on primitive sequence",
			content: `{"objects": [{"id": 1, "elem": "int", "items": [1]}]}`,
			invalid: true,
		},
		{
			name:    "Sequence with fields",
			content: `{"objects": [{"id": 1, "elem": "ref", "fields": [{"name": "a", "ref": 1}]}]}`,
			invalid: true,
		},
		{
			name:    "Root not an object",
			content: `{"objects": [{"id": 1}], "roots": [2]}`,
			invalid: true,
		},
	}

	parser := &JSONParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(strings.NewReader(tt.content))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidDump)
			}
		})
	}
}

func TestJSONReferenceForms(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    graph.Field
		invalid bool
	}{
		{name: "ref", field: `{"name": "x", "ref": 2}`, want: graph.Field{Name: "x", Kind: walker.Reference, To: 2}},
		{name: "null ref", field: `{"name": "x", "ref": null}`, want: graph.Field{Name: "x", Kind: walker.Reference}},
		{name: "zero ref", field: `{"name": "x", "ref": 0}`, want: graph.Field{Name: "x", Kind: walker.Reference}},
		{name: "ref kind without ref", field: `{"name": "x", "kind": "ref"}`, want: graph.Field{Name: "x", Kind: walker.Reference}},
		{name: "ref kind with null", field: `{"name": "x", "kind": "ref", "ref": null}`, want: graph.Field{Name: "x", Kind: walker.Reference}},
		{name: "primitive", field: `{"name": "x", "kind": "double"}`, want: graph.Field{Name: "x", Kind: walker.Double}},
		{name: "primitive with null ref", field: `{"name": "x", "kind": "int", "ref": null}`, invalid: true},
		{name: "neither key", field: `{"name": "x"}`, invalid: true},
		{name: "ref not a number", field: `{"name": "x", "ref": "two"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"objects": [{"id": 1, "fields": [` + tt.field + `]}, {"id": 2}]}`
			g, err := (&JSONParser{}).Parse(strings.NewReader(doc))
			if tt.want == (graph.Field{}) {
				require.Error(t, err)
				if tt.invalid {
					assert.ErrorIs(t, err, ErrInvalidDump)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []graph.Field{tt.want}, g.GetObject(1).Fields)
		})
	}
}

func TestJSONDanglingReferenceParses(t *testing.T) {
	// Dangling references are reported when walked, not when parsed.
	g, err := (&JSONParser{}).Parse(strings.NewReader(`{"objects": [{"id": 1, "fields": [{"name": "x", "ref": 9}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []graph.ObjID{9}, g.GetObject(1).Ptrs())
	assert.Empty(t, g.GetRoots().IDs)
}

func TestJSONWithComplexGraph(t *testing.T) {
	jsonData := `{
		"objects": [
			{"id": 1, "type": "root1", "size": 10, "fields": [{"name": "a", "ref": 2}, {"name": "b", "ref": 3}]},
			{"id": 2, "type": "node", "size": 20, "fields": [{"name": "next", "ref": 3}]},
			{"id": 3, "type": "node", "size": 30, "fields": [{"name": "next", "ref": 1}]},
			{"id": 4, "type": "root2", "size": 40, "fields": [{"name": "n", "kind": "ref", "ref": 2}]}
		],
		"roots": [1, 4]
	}`

	g, err := (&JSONParser{}).Parse(strings.NewReader(jsonData))
	require.NoError(t, err)
	assert.Equal(t, 4, g.NumObjects())
	assert.Len(t, g.GetRoots().IDs, 2)

	size, err := graph.RetainedSize(g, 4, graph.Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), size)
}
