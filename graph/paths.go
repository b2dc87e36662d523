// ABOUTME: BFS algorithm for finding how an object is reached from the roots
// ABOUTME: Explains retention by naming the fields along each path

package graph

// Path represents a chain of references from an object back to a root
type Path struct {
	IDs    []ObjID  // Sequence of object IDs from target to root
	Fields []string // Fields[i] is the field of IDs[i+1] that refers to IDs[i]
}

// PathsToRoots finds up to maxPaths shortest paths from an object to the
// graph's roots using BFS over reverse edges
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}

	reverse := BuildReverseEdges(g)

	rootSet := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs {
		rootSet[id] = true
	}

	if rootSet[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	var result []Path
	queue := []Path{{IDs: []ObjID{from}}}

	for len(queue) > 0 && len(result) < maxPaths {
		node := queue[0]
		queue = queue[1:]
		last := node.IDs[len(node.IDs)-1]

		for _, ref := range reverse[last] {
			if onPath(node.IDs, ref.From) {
				continue
			}

			next := Path{
				IDs:    append(append([]ObjID(nil), node.IDs...), ref.From),
				Fields: append(append([]string(nil), node.Fields...), ref.Field),
			}

			if rootSet[ref.From] {
				result = append(result, next)
				if len(result) >= maxPaths {
					break
				}
				continue
			}
			queue = append(queue, next)
		}
	}

	return result
}

func onPath(ids []ObjID, id ObjID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
