package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"papyrus/embedding"
	"papyrus/repository"
	"papyrus/segment"
)

// Indexer runs the ingestion pipeline: segment extracted paper text,
// encode the chunks, persist them, and record the paper.
type Indexer struct {
	embed    embedding.Client
	index    repository.VectorIndex
	registry repository.PaperRegistry
	logger   *zap.Logger
}

func NewIndexer(embed embedding.Client, index repository.VectorIndex, registry repository.PaperRegistry, logger *zap.Logger) *Indexer {
	return &Indexer{
		embed:    embed,
		index:    index,
		registry: registry,
		logger:   logger,
	}
}

// Ingest indexes one paper and returns its document id and chunk count.
// Store is not atomic; if a chunk batch fails partway through, the
// partially written document is deleted before the error is returned so
// the caller can simply retry.
func (ix *Indexer) Ingest(ctx context.Context, ownerID, workspaceID string, meta repository.PaperMeta, fullText, abstract string) (string, int, error) {
	if abstract == "" {
		abstract = meta.Abstract
	}
	chunks := segment.Segment(fullText, abstract)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ix.embed.Encode(ctx, texts)
	if err != nil {
		return "", 0, fmt.Errorf("failed to embed chunks: %w", err)
	}

	docID, err := ix.index.Store(ctx, ownerID, workspaceID, meta, chunks, vectors)
	if err != nil {
		if docID != "" {
			// Partial write: compensate so a retry starts clean.
			if _, delErr := ix.index.Delete(ctx, docID, ownerID, workspaceID); delErr != nil {
				ix.logger.Error("failed to clean up partial document",
					zap.String("doc_id", docID), zap.Error(delErr))
			}
		}
		return "", 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	if ix.registry != nil {
		rec := &repository.PaperRecord{
			ID:          docID,
			OwnerID:     ownerID,
			WorkspaceID: workspaceID,
			Meta:        meta,
			ChunkCount:  len(chunks),
			IngestedAt:  time.Now().UTC(),
		}
		if err := ix.registry.PutPaper(rec); err != nil {
			ix.logger.Error("failed to record paper", zap.String("doc_id", docID), zap.Error(err))
		}
	}

	ix.logger.Info("paper indexed",
		zap.String("doc_id", docID),
		zap.String("workspace_id", workspaceID),
		zap.Int("chunks", len(chunks)))
	return docID, len(chunks), nil
}

// Remove deletes a paper's chunks and its registry record.
func (ix *Indexer) Remove(ctx context.Context, docID, ownerID, workspaceID string) (bool, error) {
	ok, err := ix.index.Delete(ctx, docID, ownerID, workspaceID)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	if ix.registry != nil {
		if _, err := ix.registry.DeletePaper(docID, ownerID); err != nil {
			ix.logger.Error("failed to delete paper record", zap.String("doc_id", docID), zap.Error(err))
		}
	}
	return ok, nil
}
