// Package index implements an exhaustive cosine-similarity index over one
// document's chunks. The corpus is a single document per question, so a
// brute-force scan is both fast enough and fully deterministic.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/paperchat/paperchat/models"
)

// Index holds parallel chunk and vector slices for one question's lifetime.
type Index struct {
	chunks  []models.Chunk
	vectors [][]float32
}

// New builds an index from parallel slices. Chunks and vectors must line up
// one to one.
func New(chunks []models.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	return &Index{chunks: chunks, vectors: vectors}, nil
}

// Search returns up to k chunks ranked by descending cosine similarity to the
// query vector. Ties keep original chunk order so results are reproducible.
// A k larger than the corpus returns every chunk.
func (ix *Index) Search(query []float32, k int) []models.ScoredChunk {
	scored := make([]models.ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		scored[i] = models.ScoredChunk{
			Chunk: ix.chunks[i],
			Score: Cosine(query, ix.vectors[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// Cosine computes dot(a,b) / (|a|*|b|) in float64. A zero-norm vector scores
// 0 rather than NaN.
func Cosine(a, b []float32) float64 {
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
