package rag

import (
	"context"
	"errors"

	"papyrus/repository"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeIndex struct {
	searchResults []repository.SimilarityResult
	abstracts     []repository.SimilarityResult
	storeErr      error
	storeDocID    string

	storedChunks  []repository.PaperChunk
	storedVectors [][]float32
	deletedDocIDs []string
	lastTopK      int
	lastMinScore  float32
}

func (f *fakeIndex) Store(ctx context.Context, ownerID, workspaceID string, meta repository.PaperMeta, chunks []repository.PaperChunk, vectors [][]float32) (string, error) {
	f.storedChunks = chunks
	f.storedVectors = vectors
	if f.storeErr != nil {
		return f.storeDocID, f.storeErr
	}
	return f.storeDocID, nil
}

func (f *fakeIndex) Search(ctx context.Context, ownerID, workspaceID string, query []float32, topK int, minScore float32) ([]repository.SimilarityResult, error) {
	f.lastTopK = topK
	f.lastMinScore = minScore
	return f.searchResults, nil
}

func (f *fakeIndex) Delete(ctx context.Context, docID, ownerID, workspaceID string) (bool, error) {
	f.deletedDocIDs = append(f.deletedDocIDs, docID)
	return true, nil
}

func (f *fakeIndex) Abstracts(ctx context.Context, ownerID, workspaceID string, docIDs []string) ([]repository.SimilarityResult, error) {
	return f.abstracts, nil
}

type fakeGenerator struct {
	calls      int
	lastSystem string
	lastUser   string
	out        string
	err        error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeRegistry struct {
	papers     []*repository.PaperRecord
	deletedIDs []string
}

func (f *fakeRegistry) CreateWorkspace(ownerID, name, description string) (*repository.Workspace, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeRegistry) Workspaces(ownerID string) ([]repository.Workspace, error) { return nil, nil }
func (f *fakeRegistry) Workspace(id, ownerID string) (*repository.Workspace, error) {
	return nil, nil
}
func (f *fakeRegistry) DeleteWorkspace(id, ownerID string) (bool, error) { return false, nil }

func (f *fakeRegistry) PutPaper(rec *repository.PaperRecord) error {
	f.papers = append(f.papers, rec)
	return nil
}

func (f *fakeRegistry) Papers(ownerID, workspaceID string) ([]repository.PaperRecord, error) {
	return nil, nil
}

func (f *fakeRegistry) DeletePaper(id, ownerID string) (bool, error) {
	f.deletedIDs = append(f.deletedIDs, id)
	return true, nil
}

// countEverySection charges one token per section, making budget
// assertions exact.
type countEverySection struct{}

func (countEverySection) Count(text string) int { return 1 }
