package services

import (
	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/pkg/apperrors"
)

// EquivalenceGraph is an undirected adjacency map over course IDs built
// from active equivalence edges. Transitive reachability is not
// precomputed; it is resolved by Closure at traversal time.
type EquivalenceGraph map[int64][]int64

// BuildEquivalenceGraph builds the adjacency map from active equivalence
// edges, inserting every edge in both directions. Self-referencing edges
// are enforced against upstream, so seeing one here is a caller error.
func BuildEquivalenceGraph(edges []*models.CourseEquivalence) (EquivalenceGraph, error) {
	graph := make(EquivalenceGraph, len(edges)*2)
	for _, edge := range edges {
		if edge.SourceCourseID == edge.TargetCourseID {
			return nil, apperrors.ErrSelfEquivalence
		}
		graph[edge.SourceCourseID] = append(graph[edge.SourceCourseID], edge.TargetCourseID)
		graph[edge.TargetCourseID] = append(graph[edge.TargetCourseID], edge.SourceCourseID)
	}
	return graph, nil
}

// Closure returns every course reachable from start, including start
// itself. Breadth-first over an explicit worklist with visited-set
// semantics: a course already visited is never re-queued, so cyclic
// equivalence chains (A↔B↔C↔A) terminate.
func (g EquivalenceGraph) Closure(start int64) map[int64]struct{} {
	visited := map[int64]struct{}{start: {}}
	queue := []int64{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g[current] {
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			queue = append(queue, neighbor)
		}
	}

	return visited
}
