package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type countingClient struct{}

func (countingClient) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func TestLazy_InitializesOnce(t *testing.T) {
	var inits int32
	l := NewLazy(func() (Client, error) {
		atomic.AddInt32(&inits, 1)
		return countingClient{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Encode(context.Background(), []string{"text"}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&inits); got != 1 {
		t.Errorf("expected a single initialization, got %d", got)
	}
}

func TestLazy_InitErrorIsSticky(t *testing.T) {
	initErr := errors.New("service unreachable")
	var inits int32
	l := NewLazy(func() (Client, error) {
		atomic.AddInt32(&inits, 1)
		return nil, initErr
	})

	for i := 0; i < 3; i++ {
		if _, err := l.Encode(context.Background(), []string{"text"}); !errors.Is(err, initErr) {
			t.Fatalf("expected the init error, got %v", err)
		}
	}
	if got := atomic.LoadInt32(&inits); got != 1 {
		t.Errorf("init retried after failure: %d initializations", got)
	}
}
