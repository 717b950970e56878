package qdrantdb

import (
	"github.com/qdrant/go-client/qdrant"
)

type PaperClient struct {
	Client    *qdrant.Client
	dimension uint64
}

func NewClient(host string, port int, dimension uint64) (*PaperClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port, // gRPC port
	})
	if err != nil {
		return nil, err
	}
	return &PaperClient{Client: client, dimension: dimension}, nil
}
