package pseudograph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolvePicksCheapestCombination(t *testing.T) {
	// two stops with two candidates each; the jointly cheapest path is
	// entry[1] -> edge(1,0), not the cheapest entry alone
	g, err := New([]int{2, 2})
	require.NoError(t, err)

	g.SetEntryWeight(0, 1)
	g.SetEntryWeight(1, 2)
	g.SetEdgeWeight(0, 0, 0, 100)
	g.SetEdgeWeight(0, 0, 1, 100)
	g.SetEdgeWeight(0, 1, 0, 5)
	g.SetEdgeWeight(0, 1, 1, 50)

	chosen, err := g.Solve()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, chosen)
}

func TestSolveSingleLayer(t *testing.T) {
	g, err := New([]int{3})
	require.NoError(t, err)
	g.SetEntryWeight(0, 7)
	g.SetEntryWeight(1, 3)
	g.SetEntryWeight(2, 9)

	chosen, err := g.Solve()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, chosen)
}

func TestSolveUnreachableSink(t *testing.T) {
	g, err := New([]int{2, 2})
	require.NoError(t, err)
	g.SetEntryWeight(0, 1)
	g.SetEntryWeight(1, 1)
	// no edges set: every inter-layer connection stays infinite

	_, err = g.Solve()
	assert.Error(t, err)
}

func TestSolveTieKeepsLowestFromIndex(t *testing.T) {
	g, err := New([]int{2, 1})
	require.NoError(t, err)
	g.SetEntryWeight(0, 5)
	g.SetEntryWeight(1, 5)
	g.SetEdgeWeight(0, 0, 0, 10)
	g.SetEdgeWeight(0, 1, 0, 10)

	chosen, err := g.Solve()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, chosen)
}

func TestNewRejectsEmptyLayers(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]int{2, 0, 1})
	assert.Error(t, err)
}

func TestSolveThreeLayers(t *testing.T) {
	g, err := New([]int{1, 2, 1})
	require.NoError(t, err)
	g.SetEntryWeight(0, 0)
	g.SetEdgeWeight(0, 0, 0, 1)
	g.SetEdgeWeight(0, 0, 1, 2)
	g.SetEdgeWeight(1, 0, 0, 10)
	g.SetEdgeWeight(1, 1, 0, 1)

	chosen, err := g.Solve()
	require.NoError(t, err)
	// 0 -> 1 -> 0 costs 3, beating 0 -> 0 -> 0 at 11
	assert.Equal(t, []int{0, 1, 0}, chosen)
}
