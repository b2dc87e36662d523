// ABOUTME: Builds reverse edges for graph traversal
// ABOUTME: Maps objects to the named fields that refer to them

package graph

import "sort"

// Referrer is one incoming edge: the object holding the field and its name
type Referrer struct {
	From  ObjID
	Field string
}

// ReverseEdges maps each object to the fields that point to it
type ReverseEdges map[ObjID][]Referrer

// BuildReverseEdges creates a map of reverse edges
func BuildReverseEdges(g Graph) ReverseEdges {
	reverse := make(ReverseEdges)

	g.ForEachObject(func(obj *Object) {
		for _, f := range obj.Fields {
			if f.To == 0 {
				continue
			}
			reverse[f.To] = append(reverse[f.To], Referrer{From: obj.ID, Field: f.Name})
		}
	})

	for _, refs := range reverse {
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].From != refs[j].From {
				return refs[i].From < refs[j].From
			}
			return refs[i].Field < refs[j].Field
		})
	}

	return reverse
}
