package embedding

import (
	"context"
	"sync"
)

// Lazy defers construction of the underlying client until the first
// Encode call. Concurrent first calls resolve to exactly one
// initialization; an initialization failure is sticky and is returned
// to every caller rather than silently degrading to empty vectors.
type Lazy struct {
	init   func() (Client, error)
	once   sync.Once
	client Client
	err    error
}

func NewLazy(init func() (Client, error)) *Lazy {
	return &Lazy{init: init}
}

func (l *Lazy) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	l.once.Do(func() {
		l.client, l.err = l.init()
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.Encode(ctx, texts)
}
