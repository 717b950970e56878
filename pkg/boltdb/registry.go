package boltdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"papyrus/repository"
)

var (
	workspaceBucket = []byte("workspaces")
	paperBucket     = []byte("papers")
)

// Registry keeps workspace and paper bookkeeping in a local bbolt file.
// Records are JSON values keyed by id; owner scoping is enforced on
// every read and delete.
type Registry struct {
	db *bolt.DB
}

func Open(path string) (*Registry, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for registry: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{workspaceBucket, paperBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

func (r *Registry) CreateWorkspace(ownerID, name, description string) (*repository.Workspace, error) {
	ws := &repository.Workspace{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(ws)
		if err != nil {
			return err
		}
		return tx.Bucket(workspaceBucket).Put([]byte(ws.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

func (r *Registry) Workspaces(ownerID string) ([]repository.Workspace, error) {
	var out []repository.Workspace
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(workspaceBucket).ForEach(func(k, v []byte) error {
			var ws repository.Workspace
			if err := json.Unmarshal(v, &ws); err != nil {
				return err
			}
			if ws.OwnerID == ownerID {
				out = append(out, ws)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return out, nil
}

func (r *Registry) Workspace(id, ownerID string) (*repository.Workspace, error) {
	var ws *repository.Workspace
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(workspaceBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		var got repository.Workspace
		if err := json.Unmarshal(v, &got); err != nil {
			return err
		}
		if got.OwnerID == ownerID {
			ws = &got
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return ws, nil
}

func (r *Registry) DeleteWorkspace(id, ownerID string) (bool, error) {
	deleted := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(workspaceBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		var ws repository.Workspace
		if err := json.Unmarshal(v, &ws); err != nil {
			return err
		}
		if ws.OwnerID != ownerID {
			return nil
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}
		deleted = true

		// Cascade paper records belonging to the workspace.
		papers := tx.Bucket(paperBucket)
		var stale [][]byte
		err := papers.ForEach(func(k, v []byte) error {
			var rec repository.PaperRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.WorkspaceID == id && rec.OwnerID == ownerID {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := papers.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete workspace: %w", err)
	}
	return deleted, nil
}

func (r *Registry) PutPaper(rec *repository.PaperRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("paper record requires an id")
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(paperBucket).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to put paper: %w", err)
	}
	return nil
}

func (r *Registry) Papers(ownerID, workspaceID string) ([]repository.PaperRecord, error) {
	var out []repository.PaperRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(paperBucket).ForEach(func(k, v []byte) error {
			var rec repository.PaperRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.OwnerID == ownerID && rec.WorkspaceID == workspaceID {
				out = append(out, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return out, nil
}

func (r *Registry) DeletePaper(id, ownerID string) (bool, error) {
	deleted := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(paperBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		var rec repository.PaperRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		if rec.OwnerID != ownerID {
			return nil
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete paper: %w", err)
	}
	return deleted, nil
}
