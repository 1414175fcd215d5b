package clustering

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/curriculum-builder/internal/embedding"
)

func hashedResults(n int) []embedding.Result {
	results := make([]embedding.Result, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("content-%02d", i)
		results = append(results, embedding.Result{
			ID:     id,
			Vector: embedding.HashVector("lesson about topic " + id),
		})
	}
	return results
}

func TestClusterEmbeddings_Empty(t *testing.T) {
	assert.Nil(t, ClusterEmbeddings(nil))
}

func TestClusterEmbeddings_SingleItem(t *testing.T) {
	clusters := ClusterEmbeddings(hashedResults(1))
	require.Len(t, clusters, 1)
	assert.Equal(t, 0, clusters[0].ID)
	assert.Equal(t, []string{"content-00"}, clusters[0].ContentIDs)
}

func TestClusterEmbeddings_TwoItems(t *testing.T) {
	clusters := ClusterEmbeddings(hashedResults(2))
	total := 0
	for _, c := range clusters {
		total += len(c.ContentIDs)
	}
	assert.Equal(t, 2, total)
	assert.LessOrEqual(t, len(clusters), 2)
}

func TestClusterEmbeddings_Deterministic(t *testing.T) {
	a := ClusterEmbeddings(hashedResults(25))
	b := ClusterEmbeddings(hashedResults(25))
	assert.Equal(t, a, b)
}

func TestClusterEmbeddings_EveryItemAssignedOnce(t *testing.T) {
	inputs := hashedResults(30)
	clusters := ClusterEmbeddings(inputs)

	seen := make(map[string]int)
	for _, c := range clusters {
		for _, id := range c.ContentIDs {
			seen[id]++
		}
	}
	require.Len(t, seen, len(inputs))
	for id, count := range seen {
		assert.Equal(t, 1, count, "content %s", id)
	}
}

func TestClusterEmbeddings_ContiguousIDs(t *testing.T) {
	clusters := ClusterEmbeddings(hashedResults(30))
	for i, c := range clusters {
		assert.Equal(t, i, c.ID)
		assert.NotEmpty(t, c.ContentIDs)
	}
}

func TestChooseK(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 2},
		{9, 3},
		{16, 4},
		{25, 5},
		{100, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			assert.Equal(t, tt.expected, chooseK(tt.n))
		})
	}
}

func TestClusterEmbeddings_ScalesWithVolume(t *testing.T) {
	small := ClusterEmbeddings(hashedResults(4))
	large := ClusterEmbeddings(hashedResults(64))
	assert.Greater(t, len(large), len(small))
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	zero := []float32{0, 0, 0}

	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(a, zero))
}
