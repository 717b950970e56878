package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"papyrus/embedding"
	"papyrus/repository"
)

const (
	retrievalTopK     = 5
	retrievalMinScore = 0.1

	maxSourceSnippets = 3
	snippetRunes      = 200

	// Prepended to every question before embedding. Abstracts rarely
	// share literal keywords with narrowly-worded questions; biasing
	// the query toward high-level framing keeps them retrievable.
	queryBoostPrefix = "Main contribution, key idea, novelty, and core method of the paper. Question: "

	// NoResultsAnswer is returned, without invoking the generator, when
	// no chunk clears the similarity threshold.
	NoResultsAnswer = "No relevant documents found in this workspace."

	systemPrompt = "You are a research assistant. Answer the user's question based ONLY on the provided content. " +
		"You may synthesize information across sections. " +
		"If the content does not contain the answer, say you cannot find it in the indexed papers rather than guessing."
)

// Answer is the outcome of one question: generated text plus the
// snippets it was grounded on.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Generator is the text-generation boundary the planner delegates to.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Planner answers questions over indexed papers: it boosts and embeds
// the question, ranks chunks, guarantees abstract inclusion, assembles
// a bounded context, and delegates generation.
type Planner struct {
	embed   embedding.Client
	index   repository.VectorIndex
	gen     Generator
	counter TokenCounter
	budget  int
	logger  *zap.Logger
}

func NewPlanner(embed embedding.Client, index repository.VectorIndex, gen Generator, counter TokenCounter, tokenBudget int, logger *zap.Logger) *Planner {
	return &Planner{
		embed:   embed,
		index:   index,
		gen:     gen,
		counter: counter,
		budget:  tokenBudget,
		logger:  logger,
	}
}

// Generator exposes the generation boundary for callers that bypass
// retrieval, such as summarization.
func (p *Planner) Generator() Generator { return p.gen }

func (p *Planner) Answer(ctx context.Context, ownerID, workspaceID, question string) (*Answer, error) {
	queryVec, err := embedding.EncodeOne(ctx, p.embed, queryBoostPrefix+question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := p.index.Search(ctx, ownerID, workspaceID, queryVec, retrievalTopK, retrievalMinScore)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	if len(results) == 0 {
		return &Answer{Text: NoResultsAnswer, Sources: []string{}}, nil
	}

	results = p.guaranteeAbstract(ctx, ownerID, workspaceID, results)
	contextText := p.assembleContext(results)

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
	answerText, err := p.gen.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:    answerText,
		Sources: sourceSnippets(results),
	}, nil
}

// guaranteeAbstract prepends a stored abstract chunk when the ranked
// set has none. The result may exceed topK; the abstract privileges
// high-level framing over one more body chunk.
func (p *Planner) guaranteeAbstract(ctx context.Context, ownerID, workspaceID string, results []repository.SimilarityResult) []repository.SimilarityResult {
	for _, r := range results {
		if r.Chunk.Kind == repository.ChunkAbstract {
			return results
		}
	}

	docIDs := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if !seen[r.DocID] {
			seen[r.DocID] = true
			docIDs = append(docIDs, r.DocID)
		}
	}

	abstracts, err := p.index.Abstracts(ctx, ownerID, workspaceID, docIDs)
	if err != nil {
		// Retrieval still works without the abstract; log and move on.
		p.logger.Warn("failed to fetch abstracts", zap.Error(err))
		return results
	}
	if len(abstracts) == 0 {
		return results
	}

	return append([]repository.SimilarityResult{abstracts[0]}, results...)
}

// assembleContext emits the abstract under its own header first, then
// the remaining chunks as numbered sections, blank-line separated.
// Sections stop once the token budget is spent.
func (p *Planner) assembleContext(results []repository.SimilarityResult) string {
	var abstractIdx = -1
	for i, r := range results {
		if r.Chunk.Kind == repository.ChunkAbstract {
			abstractIdx = i
			break
		}
	}

	var parts []string
	used := 0
	emit := func(section string) bool {
		if p.counter != nil && p.budget > 0 {
			n := p.counter.Count(section)
			if used+n > p.budget && len(parts) > 0 {
				return false
			}
			used += n
		}
		parts = append(parts, section)
		return true
	}

	if abstractIdx >= 0 {
		emit(fmt.Sprintf("=== ABSTRACT ===\n%s\n", results[abstractIdx].Chunk.Text))
	}
	for i, r := range results {
		if i == abstractIdx {
			continue
		}
		if !emit(fmt.Sprintf("[Section %d]:\n%s\n", i+1, r.Chunk.Text)) {
			break
		}
	}

	return strings.Join(parts, "\n")
}

func sourceSnippets(results []repository.SimilarityResult) []string {
	n := len(results)
	if n > maxSourceSnippets {
		n = maxSourceSnippets
	}
	sources := make([]string, 0, n)
	for _, r := range results[:n] {
		text := r.Chunk.Text
		if runes := []rune(text); len(runes) > snippetRunes {
			text = string(runes[:snippetRunes])
		}
		sources = append(sources, text+"...")
	}
	return sources
}
