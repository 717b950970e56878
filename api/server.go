package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Server wires the handlers onto a mux and serves them.
type Server struct {
	handler *Handler
	port    int
	logger  *zap.Logger
}

func NewServer(handler *Handler, port int, logger *zap.Logger) *Server {
	return &Server{
		handler: handler,
		port:    port,
		logger:  logger,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/rag/ingest", s.handler.IngestHandler)
	mux.HandleFunc("/rag/chat", s.handler.ChatHandler)
	mux.HandleFunc("/rag/delete", s.handler.DeleteDocumentHandler)
	mux.HandleFunc("/papers/search", s.handler.PaperSearchHandler)
	mux.HandleFunc("/papers/summarize", s.handler.SummarizeHandler)
	mux.HandleFunc("/workspaces", s.handler.WorkspacesHandler)
	mux.HandleFunc("/workspaces/papers", s.handler.WorkspacePapersHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := ":" + strconv.Itoa(s.port)
	s.logger.Info("starting API server", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
