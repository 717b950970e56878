package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All You Need</title>
    <summary>The dominant sequence transduction models are based on complex
      recurrent or convolutional neural networks.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce a new language representation model.</summary>
    <published>2018-10-11T00:50:01Z</published>
    <author><name>Jacob Devlin</name></author>
  </entry>
</feed>`

func TestSearch_ParsesAtomFeed(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFixture))
	}))
	defer server.Close()

	c := NewArxivClient(server.URL, nil, zap.NewNop())
	papers, err := c.Search(context.Background(), "attention transformers", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "all:attention transformers" {
		t.Errorf("unexpected search_query %q", gotQuery)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.Title != "Attention Is All You Need" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Link != "http://arxiv.org/abs/1706.03762v7" {
		t.Errorf("unexpected link %q", first.Link)
	}
	if first.Year != "2017" {
		t.Errorf("unexpected year %q", first.Year)
	}
	if first.Source != "arXiv" {
		t.Errorf("unexpected source %q", first.Source)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Ashish Vaswani" {
		t.Errorf("unexpected authors %v", first.Authors)
	}
	if first.Abstract == "" {
		t.Error("abstract not parsed")
	}
}

func TestSearch_UsesExtractedKeywords(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer server.Close()

	c := NewArxivClient(server.URL, NewSnowballKeywordExtractor(), zap.NewNop())
	papers, err := c.Search(context.Background(), "what is the paper about attention?", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("expected an empty result, got %d papers", len(papers))
	}
	if gotQuery != "all:"+stemWord("attention") {
		t.Errorf("expected the stemmed keyword query, got %q", gotQuery)
	}
}

func TestSearch_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewArxivClient(server.URL, nil, zap.NewNop())
	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
