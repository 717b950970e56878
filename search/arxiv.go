package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"papyrus/repository"
)

const (
	DefaultArxivBaseURL = "http://export.arxiv.org/api/query"

	defaultMaxResults = 12
)

// ArxivClient queries the arXiv Atom API for papers.
type ArxivClient struct {
	baseURL    string
	httpClient *http.Client
	extractor  KeywordExtractor
	logger     *zap.Logger
}

func NewArxivClient(baseURL string, extractor KeywordExtractor, logger *zap.Logger) *ArxivClient {
	if baseURL == "" {
		baseURL = DefaultArxivBaseURL
	}
	return &ArxivClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		extractor: extractor,
		logger:    logger,
	}
}

// Search runs a keyword query against arXiv and parses the Atom feed
// into paper metadata. A feed that cannot be fetched or parsed is an
// error; a feed with no entries is an empty result.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]repository.PaperMeta, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	searchQuery := query
	if c.extractor != nil {
		keywords, err := c.extractor.ExtractKeywords(query)
		if err == nil && len(keywords) > 0 {
			searchQuery = strings.Join(keywords, " ")
		}
	}

	params := url.Values{}
	params.Set("search_query", "all:"+searchQuery)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arxiv request: %w", err)
	}
	req.Header.Set("User-Agent", "papyrus/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	entries := xmlquery.Find(doc, "//entry")
	papers := make([]repository.PaperMeta, 0, len(entries))
	for _, entry := range entries {
		meta := repository.PaperMeta{
			Title:    nodeText(entry, "title"),
			Abstract: nodeText(entry, "summary"),
			Link:     nodeText(entry, "id"),
			Source:   "arXiv",
		}
		if published := nodeText(entry, "published"); len(published) >= 4 {
			meta.Year = published[:4]
		}
		for _, author := range xmlquery.Find(entry, "author/name") {
			meta.Authors = append(meta.Authors, strings.TrimSpace(author.InnerText()))
		}
		papers = append(papers, meta)
	}

	c.logger.Info("arxiv search",
		zap.String("query", searchQuery),
		zap.Int("results", len(papers)))
	return papers, nil
}

func nodeText(entry *xmlquery.Node, path string) string {
	node := xmlquery.FindOne(entry, path)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}
