package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"papyrus/repository"
)

func paperText() string {
	abstract := "This paper studies how sliding-window retrieval units behave when paper abstracts are privileged during context assembly."
	return "Title\nAbstract\n" + abstract + "\n\nIntroduction\n" + strings.Repeat("body sentence with enough substance to survive the window minimum. ", 40)
}

func TestIngest_StoresChunksAndRecordsPaper(t *testing.T) {
	index := &fakeIndex{storeDocID: "doc-1"}
	registry := &fakeRegistry{}
	ix := NewIndexer(&fakeEmbedder{}, index, registry, zap.NewNop())

	meta := repository.PaperMeta{Title: "Sliding Windows"}
	docID, chunkCount, err := ix.Ingest(context.Background(), "user-1", "ws-1", meta, paperText(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docID != "doc-1" {
		t.Errorf("expected the index's doc id, got %q", docID)
	}
	if chunkCount != len(index.storedChunks) {
		t.Errorf("chunk count %d does not match stored chunks %d", chunkCount, len(index.storedChunks))
	}
	if len(index.storedChunks) == 0 {
		t.Fatal("no chunks stored")
	}
	if index.storedChunks[0].Kind != repository.ChunkAbstract {
		t.Error("expected the abstract stored first")
	}
	if len(index.storedVectors) != len(index.storedChunks) {
		t.Error("vectors and chunks diverged")
	}

	if len(registry.papers) != 1 {
		t.Fatalf("expected 1 paper record, got %d", len(registry.papers))
	}
	rec := registry.papers[0]
	if rec.ID != "doc-1" || rec.ChunkCount != chunkCount || rec.Meta.Title != "Sliding Windows" {
		t.Errorf("paper record not populated: %+v", rec)
	}
}

func TestIngest_CompensatesPartialWrite(t *testing.T) {
	index := &fakeIndex{storeDocID: "doc-partial", storeErr: errors.New("batch 2 failed")}
	ix := NewIndexer(&fakeEmbedder{}, index, nil, zap.NewNop())

	_, _, err := ix.Ingest(context.Background(), "user-1", "ws-1", repository.PaperMeta{}, paperText(), "")
	if err == nil {
		t.Fatal("expected the store failure to propagate")
	}
	if len(index.deletedDocIDs) != 1 || index.deletedDocIDs[0] != "doc-partial" {
		t.Errorf("expected a compensating delete of the partial document, got %v", index.deletedDocIDs)
	}
}

func TestIngest_EmbedFailureIsFatal(t *testing.T) {
	embedErr := errors.New("model load failed")
	index := &fakeIndex{storeDocID: "doc-1"}
	ix := NewIndexer(&fakeEmbedder{err: embedErr}, index, nil, zap.NewNop())

	_, _, err := ix.Ingest(context.Background(), "user-1", "ws-1", repository.PaperMeta{}, paperText(), "")
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected the embed error to propagate, got %v", err)
	}
	if len(index.storedChunks) != 0 {
		t.Error("chunks were stored despite the embedding failure")
	}
}

func TestRemove_DeletesChunksAndRecord(t *testing.T) {
	index := &fakeIndex{}
	registry := &fakeRegistry{}
	ix := NewIndexer(&fakeEmbedder{}, index, registry, zap.NewNop())

	ok, err := ix.Remove(context.Background(), "doc-1", "user-1", "ws-1")
	if err != nil || !ok {
		t.Fatalf("expected removal to succeed, got ok=%v err=%v", ok, err)
	}
	if len(index.deletedDocIDs) != 1 {
		t.Error("vector index delete not invoked")
	}
	if len(registry.deletedIDs) != 1 || registry.deletedIDs[0] != "doc-1" {
		t.Error("registry record not deleted")
	}
}
