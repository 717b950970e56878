package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"papyrus/api"
	"papyrus/config"
	"papyrus/embedding"
	"papyrus/generation"
	"papyrus/pkg/boltdb"
	"papyrus/pkg/memdb"
	qdrantClient "papyrus/pkg/qdrantdb"
	"papyrus/rag"
	"papyrus/repository"
	"papyrus/search"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Paper registry
	// =========
	registry, err := boltdb.Open(cfg.RegistryPath)
	if err != nil {
		log.Fatalf("Failed to open registry: %v", err)
	}
	defer registry.Close()

	// =========
	// Vector index
	// =========
	var index repository.VectorIndex
	switch cfg.VectorBackend {
	case "memory":
		index = memdb.NewPaperVectorIndex()
	default:
		qdb, err := qdrantClient.NewClient(cfg.QdrantHost, cfg.QdrantPort, uint64(cfg.EmbeddingDim))
		if err != nil {
			log.Fatalf("Failed to initialize qdrant: %v", err)
		}
		if err := qdb.CreatePaperCollection(context.Background()); err != nil {
			log.Fatalf("Failed to ensure paper collection: %v", err)
		}
		index = qdb
	}

	// =========
	// Embedding client
	// =========
	embedClient := embedding.NewLazy(func() (embedding.Client, error) {
		return embedding.NewTEIClient(cfg.TEIURL), nil
	})

	// =========
	// Generation client
	// =========
	backend, err := generation.NewGeminiBackend(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create generation backend: %v", err)
	}
	genClient := generation.NewClient(backend, logger)

	// =========
	// RAG pipeline
	// =========
	counter, err := rag.NewTiktokenCounter()
	if err != nil {
		logger.Warn("token counter unavailable, context budget disabled", zap.Error(err))
	}
	indexer := rag.NewIndexer(embedClient, index, registry, logger)
	planner := rag.NewPlanner(embedClient, index, genClient, counter, cfg.ContextTokenBudget, logger)

	// =========
	// arXiv search
	// =========
	arxiv := search.NewArxivClient(cfg.ArxivBaseURL, search.NewSnowballKeywordExtractor(), logger)

	// =========
	// HTTP server
	// =========
	verifier := api.NewStaticVerifier(cfg.AuthTokens)
	handler := api.NewHandler(indexer, planner, registry, arxiv, verifier, logger)
	server := api.NewServer(handler, cfg.AppPort, logger)

	if err := server.Start(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
