package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"papyrus/generation"
	"papyrus/rag"
	"papyrus/repository"
	"papyrus/search"
)

// Handler exposes the retrieval pipeline over HTTP. It is thin glue:
// decode, verify, delegate, encode.
type Handler struct {
	indexer  *rag.Indexer
	planner  *rag.Planner
	registry repository.PaperRegistry
	arxiv    *search.ArxivClient
	verifier TokenVerifier
	logger   *zap.Logger
}

func NewHandler(indexer *rag.Indexer, planner *rag.Planner, registry repository.PaperRegistry, arxiv *search.ArxivClient, verifier TokenVerifier, logger *zap.Logger) *Handler {
	return &Handler{
		indexer:  indexer,
		planner:  planner,
		registry: registry,
		arxiv:    arxiv,
		verifier: verifier,
		logger:   logger,
	}
}

type IngestRequest struct {
	WorkspaceID string               `json:"workspace_id"`
	FullText    string               `json:"full_text"`
	Abstract    string               `json:"abstract,omitempty"`
	Meta        repository.PaperMeta `json:"meta"`
}

type IngestResponse struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Message    string `json:"message"`
}

func (h *Handler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.authorize(w, r, http.MethodPost)
	if !ok {
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.WorkspaceID) == "" {
		http.Error(w, "missing workspace_id", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.FullText) == "" {
		http.Error(w, "missing full_text", http.StatusBadRequest)
		return
	}

	docID, chunkCount, err := h.indexer.Ingest(r.Context(), ownerID, req.WorkspaceID, req.Meta, req.FullText, req.Abstract)
	if err != nil {
		h.logger.Error("ingest failed", zap.Error(err))
		http.Error(w, "failed to index document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		DocumentID: docID,
		ChunkCount: chunkCount,
		Message:    "Document processed and indexed",
	})
}

type ChatRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Question    string `json:"question"`
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.authorize(w, r, http.MethodPost)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "missing question", http.StatusBadRequest)
		return
	}

	answer, err := h.planner.Answer(r.Context(), ownerID, req.WorkspaceID, req.Question)
	if err != nil {
		var throttled *generation.ThrottledError
		if errors.As(err, &throttled) {
			http.Error(w, "Generation rate limit reached. Please wait a minute and try again.", http.StatusTooManyRequests)
			return
		}
		h.logger.Error("chat failed", zap.Error(err))
		http.Error(w, "failed to answer question", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

type DeleteDocumentRequest struct {
	DocumentID  string `json:"document_id"`
	WorkspaceID string `json:"workspace_id"`
}

func (h *Handler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.authorize(w, r, http.MethodPost)
	if !ok {
		return
	}

	var req DeleteDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	deleted, err := h.indexer.Remove(r.Context(), req.DocumentID, ownerID, req.WorkspaceID)
	if err != nil {
		h.logger.Error("delete failed", zap.Error(err))
		http.Error(w, "failed to delete document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *Handler) PaperSearchHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, http.MethodGet); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "missing query parameter", http.StatusBadRequest)
		return
	}

	papers, err := h.arxiv.Search(r.Context(), query, 0)
	if err != nil {
		h.logger.Error("paper search failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{"papers": []repository.PaperMeta{}})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

type SummarizeRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

func (h *Handler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, http.MethodPost); !ok {
		return
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	summary, err := rag.Summarize(r.Context(), h.planner.Generator(), req.Title, req.Abstract)
	if err != nil {
		var throttled *generation.ThrottledError
		if errors.As(err, &throttled) {
			http.Error(w, "Generation rate limit reached. Please wait a minute and try again.", http.StatusTooManyRequests)
			return
		}
		h.logger.Error("summarize failed", zap.Error(err))
		http.Error(w, "failed to generate summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) WorkspacesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ownerID, ok := h.authorize(w, r, http.MethodGet)
		if !ok {
			return
		}
		workspaces, err := h.registry.Workspaces(ownerID)
		if err != nil {
			h.logger.Error("list workspaces failed", zap.Error(err))
			http.Error(w, "failed to list workspaces", http.StatusInternalServerError)
			return
		}
		if workspaces == nil {
			workspaces = []repository.Workspace{}
		}
		writeJSON(w, http.StatusOK, workspaces)

	case http.MethodPost:
		ownerID, ok := h.authorize(w, r, http.MethodPost)
		if !ok {
			return
		}
		var req CreateWorkspaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}
		ws, err := h.registry.CreateWorkspace(ownerID, req.Name, req.Description)
		if err != nil {
			h.logger.Error("create workspace failed", zap.Error(err))
			http.Error(w, "failed to create workspace", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, ws)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) WorkspacePapersHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.authorize(w, r, http.MethodGet)
	if !ok {
		return
	}

	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace_id"))
	if workspaceID == "" {
		http.Error(w, "missing workspace_id parameter", http.StatusBadRequest)
		return
	}

	papers, err := h.registry.Papers(ownerID, workspaceID)
	if err != nil {
		h.logger.Error("list papers failed", zap.Error(err))
		http.Error(w, "failed to list papers", http.StatusInternalServerError)
		return
	}
	if papers == nil {
		papers = []repository.PaperRecord{}
	}
	writeJSON(w, http.StatusOK, papers)
}

// authorize enforces the HTTP method and resolves the bearer token to
// an owner id.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, method string) (string, bool) {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return "", false
	}

	ownerID, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return "", false
	}
	return ownerID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
