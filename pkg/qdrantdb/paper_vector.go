package qdrantdb

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"papyrus/repository"
)

const (
	PaperCollectionName = "paper_chunks"

	// Chunk points are upserted in fixed-size batches to bound request
	// payload size. A failure partway through leaves a partial document;
	// callers compensate with Delete.
	storeBatchSize = 50

	abstractScrollLimit = 64
)

var pointNamespace = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

// CreatePaperCollection ensures the chunk collection and its payload
// indexes exist. Safe to call on every startup.
func (c *PaperClient) CreatePaperCollection(ctx context.Context) error {
	exists, err := c.Client.CollectionExists(ctx, PaperCollectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: PaperCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     c.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("err create paper collection: %w", err)
	}

	for _, field := range []string{"owner_id", "workspace_id", "doc_id", "type"} {
		_, err = c.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: PaperCollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("err create %s index: %w", field, err)
		}
	}
	return nil
}

func (c *PaperClient) Store(ctx context.Context, ownerID, workspaceID string, meta repository.PaperMeta, chunks []repository.PaperChunk, vectors [][]float32) (string, error) {
	if len(chunks) != len(vectors) {
		return "", fmt.Errorf("qdrantdb: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	docID := uuid.NewString()
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", docID, chunk.Position, chunk.Text)))
		id := uuid.NewSHA1(pointNamespace, hash[:16]).String()

		md := map[string]any{
			"chunk_text":   chunk.Text,
			"type":         string(chunk.Kind),
			"chunk_index":  int64(chunk.Position),
			"doc_id":       docID,
			"owner_id":     ownerID,
			"workspace_id": workspaceID,
			"title":        meta.Title,
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectorsDense(vectors[i]),
			Payload: qdrant.NewValueMap(md),
		}
	}

	for start := 0; start < len(points); start += storeBatchSize {
		end := start + storeBatchSize
		if end > len(points) {
			end = len(points)
		}
		_, err := c.Client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: PaperCollectionName,
			Points:         points[start:end],
		})
		if err != nil {
			return docID, fmt.Errorf("err upsert batch [%d:%d] of doc %s: %w", start, end, docID, err)
		}
	}

	return docID, nil
}

func (c *PaperClient) Search(ctx context.Context, ownerID, workspaceID string, query []float32, topK int, minScore float32) ([]repository.SimilarityResult, error) {
	limit := uint64(topK)
	scored, err := c.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: PaperCollectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		ScoreThreshold: &minScore,
		Filter:         scopeFilter(ownerID, workspaceID),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("err query paper chunks: %w", err)
	}

	results := make([]repository.SimilarityResult, 0, len(scored))
	for _, p := range scored {
		r := payloadToResult(p.Payload)
		r.Score = p.Score
		results = append(results, r)
	}

	// Qdrant orders by score; re-sort to pin the position tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})
	return results, nil
}

func (c *PaperClient) Delete(ctx context.Context, docID, ownerID, workspaceID string) (bool, error) {
	filter := scopeFilter(ownerID, workspaceID)
	filter.Must = append(filter.Must, qdrant.NewMatch("doc_id", docID))

	exact := true
	count, err := c.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: PaperCollectionName,
		Filter:         filter,
		Exact:          &exact,
	})
	if err != nil {
		return false, fmt.Errorf("err count doc %s: %w", docID, err)
	}
	if count == 0 {
		return false, nil
	}

	_, err = c.Client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: PaperCollectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return false, fmt.Errorf("err delete doc %s: %w", docID, err)
	}
	return true, nil
}

func (c *PaperClient) Abstracts(ctx context.Context, ownerID, workspaceID string, docIDs []string) ([]repository.SimilarityResult, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}

	filter := scopeFilter(ownerID, workspaceID)
	filter.Must = append(filter.Must,
		qdrant.NewMatch("type", string(repository.ChunkAbstract)),
		qdrant.NewMatchKeywords("doc_id", docIDs...),
	)

	limit := uint32(abstractScrollLimit)
	points, err := c.Client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: PaperCollectionName,
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("err scroll abstracts: %w", err)
	}

	out := make([]repository.SimilarityResult, 0, len(points))
	for _, p := range points {
		r := payloadToResult(p.Payload)
		r.Score = 1.0
		out = append(out, r)
	}
	return out, nil
}

func scopeFilter(ownerID, workspaceID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("owner_id", ownerID),
			qdrant.NewMatch("workspace_id", workspaceID),
		},
	}
}

func payloadToResult(payload map[string]*qdrant.Value) repository.SimilarityResult {
	return repository.SimilarityResult{
		DocID: payload["doc_id"].GetStringValue(),
		Chunk: repository.PaperChunk{
			Text:     payload["chunk_text"].GetStringValue(),
			Kind:     repository.ParseChunkKind(payload["type"].GetStringValue()),
			Position: int(payload["chunk_index"].GetIntegerValue()),
		},
	}
}
