package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"papyrus/embedding"
	"papyrus/repository"
)

type storedChunk struct {
	docID       string
	ownerID     string
	workspaceID string
	chunk       repository.PaperChunk
	vector      []float32
}

// PaperVectorIndex is an in-memory brute-force cosine index implementing
// repository.VectorIndex. It backs tests and single-node runs where a
// Qdrant instance is not available.
type PaperVectorIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    []storedChunk
}

func NewPaperVectorIndex() *PaperVectorIndex {
	return &PaperVectorIndex{}
}

func (x *PaperVectorIndex) Store(ctx context.Context, ownerID, workspaceID string, meta repository.PaperMeta, chunks []repository.PaperChunk, vectors [][]float32) (string, error) {
	if len(chunks) != len(vectors) {
		return "", fmt.Errorf("memdb: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, v := range vectors {
		if x.dimension == 0 {
			x.dimension = len(v)
		}
		if len(v) != x.dimension {
			return "", fmt.Errorf("memdb: got %d-dim vector, index holds %d-dim: %w",
				len(v), x.dimension, embedding.ErrDimensionMismatch)
		}
	}

	docID := uuid.NewString()
	for i, c := range chunks {
		x.chunks = append(x.chunks, storedChunk{
			docID:       docID,
			ownerID:     ownerID,
			workspaceID: workspaceID,
			chunk:       c,
			vector:      vectors[i],
		})
	}
	return docID, nil
}

func (x *PaperVectorIndex) Search(ctx context.Context, ownerID, workspaceID string, query []float32, topK int, minScore float32) ([]repository.SimilarityResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dimension != 0 && len(query) != x.dimension {
		return nil, fmt.Errorf("memdb: got %d-dim query, index holds %d-dim: %w",
			len(query), x.dimension, embedding.ErrDimensionMismatch)
	}

	var results []repository.SimilarityResult
	for _, sc := range x.chunks {
		if sc.ownerID != ownerID || sc.workspaceID != workspaceID {
			continue
		}
		score := float32(embedding.CosineSimilarity(sc.vector, query))
		if score < minScore {
			continue
		}
		results = append(results, repository.SimilarityResult{
			DocID: sc.docID,
			Chunk: sc.chunk,
			Score: score,
		})
	}

	sortResults(results)
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (x *PaperVectorIndex) Delete(ctx context.Context, docID, ownerID, workspaceID string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.chunks[:0]
	removed := false
	for _, sc := range x.chunks {
		if sc.docID == docID && sc.ownerID == ownerID && sc.workspaceID == workspaceID {
			removed = true
			continue
		}
		kept = append(kept, sc)
	}
	x.chunks = kept
	return removed, nil
}

func (x *PaperVectorIndex) Abstracts(ctx context.Context, ownerID, workspaceID string, docIDs []string) ([]repository.SimilarityResult, error) {
	wanted := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		wanted[id] = true
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []repository.SimilarityResult
	for _, sc := range x.chunks {
		if sc.ownerID != ownerID || sc.workspaceID != workspaceID {
			continue
		}
		if sc.chunk.Kind != repository.ChunkAbstract || !wanted[sc.docID] {
			continue
		}
		out = append(out, repository.SimilarityResult{
			DocID: sc.docID,
			Chunk: sc.chunk,
			Score: 1.0,
		})
	}
	return out, nil
}

// sortResults orders by descending score with ascending chunk position
// as the tie-break, keeping retrieval deterministic.
func sortResults(results []repository.SimilarityResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})
}
