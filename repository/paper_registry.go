package repository

import "time"

// Workspace groups papers under one owner.
type Workspace struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaperRecord is the bookkeeping row kept per ingested document.
type PaperRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	WorkspaceID string    `json:"workspace_id"`
	Meta        PaperMeta `json:"meta"`
	ChunkCount  int       `json:"chunk_count"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// PaperRegistry tracks workspaces and ingested papers. It owns no
// vectors; the VectorIndex remains the source of truth for chunks.
type PaperRegistry interface {
	CreateWorkspace(ownerID, name, description string) (*Workspace, error)
	Workspaces(ownerID string) ([]Workspace, error)
	Workspace(id, ownerID string) (*Workspace, error)
	DeleteWorkspace(id, ownerID string) (bool, error)

	PutPaper(rec *PaperRecord) error
	Papers(ownerID, workspaceID string) ([]PaperRecord, error)
	DeletePaper(id, ownerID string) (bool, error)
}
