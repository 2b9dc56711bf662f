package services

import (
	"testing"
	"time"

	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(source, target int64) *models.CourseEquivalence {
	return &models.CourseEquivalence{
		SourceCourseID: source,
		TargetCourseID: target,
		Type:           models.EquivalenceTotal,
		EffectiveFrom:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:         true,
	}
}

func TestBuildEquivalenceGraph_Symmetry(t *testing.T) {
	graph, err := BuildEquivalenceGraph([]*models.CourseEquivalence{
		edge(1, 2),
		edge(2, 3),
		edge(5, 1),
	})
	require.NoError(t, err)

	// Every edge appears in both directions.
	assert.Contains(t, graph[1], int64(2))
	assert.Contains(t, graph[2], int64(1))
	assert.Contains(t, graph[2], int64(3))
	assert.Contains(t, graph[3], int64(2))
	assert.Contains(t, graph[5], int64(1))
	assert.Contains(t, graph[1], int64(5))
}

func TestBuildEquivalenceGraph_SelfEdge(t *testing.T) {
	_, err := BuildEquivalenceGraph([]*models.CourseEquivalence{edge(4, 4)})
	assert.ErrorIs(t, err, apperrors.ErrSelfEquivalence)
}

func TestEquivalenceGraph_Closure_Cycle(t *testing.T) {
	// A↔B, B↔C, C↔A: the traversal must terminate and reach all three.
	graph, err := BuildEquivalenceGraph([]*models.CourseEquivalence{
		edge(1, 2),
		edge(2, 3),
		edge(3, 1),
	})
	require.NoError(t, err)

	closure := graph.Closure(1)
	assert.Len(t, closure, 3)
	assert.Contains(t, closure, int64(1))
	assert.Contains(t, closure, int64(2))
	assert.Contains(t, closure, int64(3))
}

func TestEquivalenceGraph_Closure_IsolatedCourse(t *testing.T) {
	graph, err := BuildEquivalenceGraph([]*models.CourseEquivalence{edge(1, 2)})
	require.NoError(t, err)

	closure := graph.Closure(9)
	assert.Len(t, closure, 1)
	assert.Contains(t, closure, int64(9))
}

func TestEquivalenceGraph_Closure_Chain(t *testing.T) {
	// Transitivity resolves at traversal time: 1-2-3-4 chained.
	graph, err := BuildEquivalenceGraph([]*models.CourseEquivalence{
		edge(1, 2),
		edge(2, 3),
		edge(3, 4),
	})
	require.NoError(t, err)

	closure := graph.Closure(4)
	assert.Len(t, closure, 4)
}
