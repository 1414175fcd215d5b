// Package clustering partitions content embeddings into topic groups.
// The algorithm is fully deterministic: identical vectors and parameters
// always produce identical cluster membership.
package clustering

import (
	"math"

	"github.com/jordan/curriculum-builder/internal/embedding"
)

// maxIterations bounds the k-means refinement loop.
const maxIterations = 10

// Cluster is one topic-cohesive group of content items. IDs are opaque
// grouping keys, not a ranking.
type Cluster struct {
	ID         int
	ContentIDs []string
}

// ClusterEmbeddings groups items by vector similarity into roughly
// sqrt(n) clusters. Zero items yield an empty result; one item yields a
// single singleton cluster.
func ClusterEmbeddings(embeddings []embedding.Result) []Cluster {
	if len(embeddings) == 0 {
		return nil
	}

	k := chooseK(len(embeddings))
	assign := kmeans(embeddings, k)

	// Preserve input order within clusters and drop empties so callers
	// see contiguous cluster IDs.
	grouped := make(map[int][]string, k)
	order := make([]int, 0, k)
	for i, cluster := range assign {
		if _, seen := grouped[cluster]; !seen {
			order = append(order, cluster)
		}
		grouped[cluster] = append(grouped[cluster], embeddings[i].ID)
	}

	clusters := make([]Cluster, 0, len(order))
	for i, cluster := range order {
		clusters = append(clusters, Cluster{ID: i, ContentIDs: grouped[cluster]})
	}
	return clusters
}

// chooseK scales cluster count with content volume rather than using a
// fixed constant.
func chooseK(n int) int {
	if n <= 1 {
		return 1
	}
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}
	return k
}

// kmeans assigns each vector to one of k clusters using cosine
// similarity. Initialization is deterministic k-means++: start with the
// first vector, then repeatedly pick the vector farthest from every
// chosen centroid.
func kmeans(vecs []embedding.Result, k int) []int {
	if k > len(vecs) {
		k = len(vecs)
	}

	centroids := make([][]float32, 0, k)
	centroids = append(centroids, vecs[0].Vector)
	for len(centroids) < k {
		bestIdx := 0
		bestDist := -1.0
		for i := range vecs {
			d := 1.0
			for _, c := range centroids {
				dist := 1.0 - cosineSimilarity(vecs[i].Vector, c)
				if dist < d {
					d = dist
				}
			}
			if d > bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		centroids = append(centroids, vecs[bestIdx].Vector)
	}

	assign := make([]int, len(vecs))
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range vecs {
			best := 0
			bestScore := math.Inf(-1)
			for c := 0; c < k; c++ {
				s := cosineSimilarity(v.Vector, centroids[c])
				if s > bestScore {
					bestScore = s
					best = c
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroids as member means; an emptied cluster keeps
		// its previous centroid.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i, v := range vecs {
			c := assign[i]
			if sums[c] == nil {
				sums[c] = make([]float64, len(v.Vector))
			}
			for d, x := range v.Vector {
				sums[c][d] += float64(x)
			}
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			mean := make([]float32, len(sums[c]))
			for d := range sums[c] {
				mean[d] = float32(sums[c][d] / float64(counts[c]))
			}
			centroids[c] = mean
		}
	}

	return assign
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either has no magnitude.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
