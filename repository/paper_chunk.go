package repository

import "context"

// ChunkKind tags a chunk as the paper abstract or a body window.
type ChunkKind string

const (
	ChunkAbstract ChunkKind = "abstract"
	ChunkBody     ChunkKind = "body"
)

// ParseChunkKind maps stored metadata back to a kind. Unknown values
// are treated as body so a malformed payload never breaks retrieval.
func ParseChunkKind(s string) ChunkKind {
	if s == string(ChunkAbstract) {
		return ChunkAbstract
	}
	return ChunkBody
}

// PaperChunk is the atomic retrieval unit: a typed, positioned span of
// paper text. The abstract, when present, is always position 0; body
// chunks follow at strictly increasing positions starting at 1.
type PaperChunk struct {
	Text     string    `json:"text"`
	Kind     ChunkKind `json:"kind"`
	Position int       `json:"position"`
}

// SimilarityResult pairs a chunk with its cosine similarity against a
// query vector. Score is in [-1, 1].
type SimilarityResult struct {
	DocID string     `json:"doc_id"`
	Chunk PaperChunk `json:"chunk"`
	Score float32    `json:"score"`
}

// PaperMeta carries document-level metadata stored alongside chunks.
type PaperMeta struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Year     string   `json:"year,omitempty"`
	Source   string   `json:"source,omitempty"`
	Link     string   `json:"link,omitempty"`
	Filename string   `json:"filename,omitempty"`
}

// VectorIndex persists (chunk, vector) pairs scoped by owner and
// workspace and answers top-k similarity queries over them.
//
// Store is not atomic: chunk records are written in fixed-size batches,
// and a failure partway through leaves a partially populated document.
// Callers are expected to compensate with Delete and retry.
type VectorIndex interface {
	// Store persists one document and its chunk/vector pairs and
	// returns the new document id. len(chunks) must equal len(vectors).
	Store(ctx context.Context, ownerID, workspaceID string, meta PaperMeta, chunks []PaperChunk, vectors [][]float32) (string, error)

	// Search returns at most topK chunks owned by ownerID within
	// workspaceID with similarity >= minScore, ordered by descending
	// score, ties broken by ascending chunk position. An empty result
	// is a valid outcome, not an error.
	Search(ctx context.Context, ownerID, workspaceID string, query []float32, topK int, minScore float32) ([]SimilarityResult, error)

	// Delete removes the document and all its chunks. Deleting a
	// document that does not exist or is not owned by the caller
	// reports false without error.
	Delete(ctx context.Context, docID, ownerID, workspaceID string) (bool, error)

	// Abstracts returns the abstract chunks stored for the given
	// documents, used to guarantee abstract inclusion at answer time.
	Abstracts(ctx context.Context, ownerID, workspaceID string, docIDs []string) ([]SimilarityResult, error)
}
