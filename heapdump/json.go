// ABOUTME: JSON object-graph document parser
// ABOUTME: Reads objects with typed fields, sequences and roots into a graph

package heapdump

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/prateek/sizeof/graph"
	"github.com/prateek/sizeof/walker"
)

// JSONParser parses JSON object-graph documents
type JSONParser struct{}

// jsonDump represents the JSON document format
type jsonDump struct {
	Objects []jsonObject  `json:"objects"`
	Roots   []graph.ObjID `json:"roots"`
}

// jsonObject represents an object in the JSON format
type jsonObject struct {
	ID     graph.ObjID   `json:"id"`
	Type   string        `json:"type"`
	Size   uint64        `json:"size"`
	Fields []jsonField   `json:"fields"`
	Elem   string        `json:"elem"`
	Items  []graph.ObjID `json:"items"`
	Shared bool          `json:"shared"`
}

// jsonField is a primitive slot when Kind is set, otherwise a reference.
// A reference with a null or zero ref is nil.
type jsonField struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	Ref  jsonRef `json:"ref"`
}

// jsonRef records whether the ref key was present, so an explicit null can
// be told apart from a missing key
type jsonRef struct {
	Set bool
	To  graph.ObjID
}

// UnmarshalJSON implements json.Unmarshaler. It is also called for null.
func (r *jsonRef) UnmarshalJSON(data []byte) error {
	r.Set = true
	if string(data) == "null" {
		r.To = 0
		return nil
	}
	return json.Unmarshal(data, &r.To)
}

// Name implements Parser
func (p *JSONParser) Name() string { return "json" }

// CanParse reports whether the document is a JSON object with a top-level
// "objects" key. A preview that runs out before that key is reached counts
// as a match and Parse makes the final call.
func (p *JSONParser) CanParse(r io.Reader) bool {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return false
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return truncated(err)
		}
		if key == "objects" {
			next, err := dec.Token()
			if err != nil {
				return truncated(err)
			}
			return next == json.Delim('[')
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return truncated(err)
		}
	}
	return false
}

// truncated reports whether err means the input ended mid-document
func truncated(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Parse reads the JSON document and builds a graph
func (p *JSONParser) Parse(r io.Reader) (graph.Graph, error) {
	var dump jsonDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, errors.Wrap(err, "decoding JSON")
	}

	g := graph.NewMemGraph()
	for i, obj := range dump.Objects {
		if obj.ID == 0 {
			return nil, errors.Wrapf(ErrInvalidDump, "object at index %d missing ID", i)
		}
		if g.GetObject(obj.ID) != nil {
			return nil, errors.Wrapf(ErrInvalidDump, "duplicate object %d", obj.ID)
		}
		converted, err := convert(obj)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d", obj.ID)
		}
		g.AddObject(converted)
	}

	for _, id := range dump.Roots {
		if g.GetObject(id) == nil {
			return nil, errors.Wrapf(ErrInvalidDump, "root %d is not an object", id)
		}
	}
	roots := graph.Roots{IDs: dump.Roots}
	if roots.IDs == nil {
		roots.IDs = []graph.ObjID{}
	}
	g.SetRoots(roots)

	return g, nil
}

func convert(obj jsonObject) (*graph.Object, error) {
	out := &graph.Object{
		ID:     obj.ID,
		Type:   obj.Type,
		Size:   obj.Size,
		Shared: obj.Shared,
		Fields: make([]graph.Field, 0, len(obj.Fields)+len(obj.Items)),
	}

	if obj.Elem != "" {
		elem, err := walker.ParseKind(obj.Elem)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidDump, "element kind: %v", err)
		}
		out.Elem = elem
	}
	if len(obj.Items) > 0 && out.Elem != walker.Reference {
		return nil, errors.Wrapf(ErrInvalidDump, "items on a sequence of %s", out.Elem)
	}
	if len(obj.Fields) > 0 && out.IsSequence() {
		return nil, errors.Wrap(ErrInvalidDump, "sequence with named fields")
	}

	for i, f := range obj.Fields {
		field, err := convertField(f)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i)
		}
		out.Fields = append(out.Fields, field)
	}
	for i, id := range obj.Items {
		out.Fields = append(out.Fields, graph.Field{
			Name: "[" + strconv.Itoa(i) + "]",
			Kind: walker.Reference,
			To:   id,
		})
	}
	return out, nil
}

func convertField(f jsonField) (graph.Field, error) {
	if f.Name == "" {
		return graph.Field{}, errors.Wrap(ErrInvalidDump, "missing name")
	}
	field := graph.Field{Name: f.Name, Kind: walker.Reference}
	if f.Kind == "" {
		if !f.Ref.Set {
			return graph.Field{}, errors.Wrapf(ErrInvalidDump, "field %q has neither kind nor ref", f.Name)
		}
		field.To = f.Ref.To
		return field, nil
	}

	kind, err := walker.ParseKind(f.Kind)
	if err != nil {
		return graph.Field{}, errors.Wrapf(ErrInvalidDump, "field %q: %v", f.Name, err)
	}
	if kind != walker.Reference && f.Ref.Set {
		return graph.Field{}, errors.Wrapf(ErrInvalidDump, "primitive field %q has a ref", f.Name)
	}
	field.Kind = kind
	field.To = f.Ref.To
	return field, nil
}

// init registers the JSON parser
func init() {
	Register(&JSONParser{})
}
