package rag

import (
	"context"
	"fmt"
)

const summarizeSystemPrompt = "You are a research assistant. Summarize the research paper in 5 concise bullet points. " +
	"Focus on: problem, method, key results, significance, limitations."

// Summarize produces a short bullet summary of a paper from its title
// and abstract. Retry semantics come from the underlying generator.
func Summarize(ctx context.Context, gen Generator, title, abstract string) (string, error) {
	userPrompt := fmt.Sprintf("Title: %s\nAbstract: %s", title, abstract)
	return gen.Generate(ctx, summarizeSystemPrompt, userPrompt)
}
