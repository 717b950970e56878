package rag

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultContextTokenBudget bounds the assembled context handed to the
// generation backend.
const DefaultContextTokenBudget = 6000

// TokenCounter measures prompt sections for the context budget.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter counts tokens with the cl100k_base encoding.
func NewTiktokenCounter() (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (t *tiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
