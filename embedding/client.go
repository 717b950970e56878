package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is a configuration fault: vectors of different
// lengths met the same index or model. It is never retried.
var ErrDimensionMismatch = errors.New("embedding: vector dimension mismatch")

// Client maps batches of UTF-8 text to fixed-dimension vectors. The
// output batch mirrors the input batch's order.
type Client interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// EncodeOne embeds a single text through a batch client.
func EncodeOne(ctx context.Context, c Client, text string) ([]float32, error) {
	vecs, err := c.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

// CosineSimilarity computes normalized dot-product similarity in [-1, 1].
// Mismatched lengths score zero; the caller is expected to treat that as
// a configuration fault before it ever reaches scoring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
