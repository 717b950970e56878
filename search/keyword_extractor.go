package search

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// KeywordExtractor reduces a free-text query to search keywords.
type KeywordExtractor interface {
	ExtractKeywords(query string) ([]string, error)
}

// SnowballKeywordExtractor drops stop words and stems the rest.
type SnowballKeywordExtractor struct {
	stopWords   map[string]bool
	punctuation *regexp.Regexp
}

func NewSnowballKeywordExtractor() *SnowballKeywordExtractor {
	stopWords := map[string]bool{
		"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
		"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
		"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
		"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
		"with": true, "would": true, "could": true, "should": true, "may": true,
		"might": true, "can": true, "must": true, "shall": true, "do": true,
		"does": true, "did": true, "have": true, "had": true, "this": true,
		"these": true, "they": true, "them": true, "their": true, "his": true,
		"her": true, "she": true, "we": true, "you": true, "your": true,
		"our": true, "us": true, "me": true, "my": true, "i": true,
		"what": true, "which": true, "how": true, "about": true, "paper": true,
		"papers": true,
	}

	return &SnowballKeywordExtractor{
		stopWords:   stopWords,
		punctuation: regexp.MustCompile(`[^\w\s]`),
	}
}

// ExtractKeywords lowercases, strips punctuation, removes stop words,
// and stems each remaining word, deduplicating by stem.
func (e *SnowballKeywordExtractor) ExtractKeywords(query string) ([]string, error) {
	query = strings.ToLower(query)
	query = e.punctuation.ReplaceAllString(query, " ")

	var keywords []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(query) {
		if len(word) < 2 {
			continue
		}
		if e.stopWords[word] {
			continue
		}

		stemmed := stemWord(word)
		if !seen[stemmed] {
			keywords = append(keywords, stemmed)
			seen[stemmed] = true
		}
	}

	return keywords, nil
}

func stemWord(word string) string {
	stem, err := snowball.Stem(word, "english", true)
	if err != nil {
		return word
	}
	return stem
}
