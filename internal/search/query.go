package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// DefaultLimit caps a query without an explicit limit.
const DefaultLimit = 20

// Query describes a content search.
type Query struct {
	Text   string
	Type   domain.ContentType // empty searches both collections
	Limit  int
	Offset int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Result is the answer to a Query.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	Engine string `json:"engine"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one matching item.
type Hit struct {
	ID       string             `json:"id"`
	Type     domain.ContentType `json:"type"`
	ItemID   int64              `json:"item_id"`
	Section  string             `json:"section"`
	Category string             `json:"category"`
	Title    string             `json:"title"`
	Snippet  string             `json:"snippet,omitempty"`
	Score    float64            `json:"score"`
}

// Engine names reported in results.
const (
	EngineBleve = "bleve"
	EngineMeili = "meilisearch"
)

// Search runs q against the local index.
func (s *Index) Search(ctx context.Context, q Query) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(q), q.limit(), q.Offset, false)
	req.Fields = []string{"type", "item_id", "section", "category", "title"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("body")
	if strings.TrimSpace(q.Text) == "" {
		req.SortBy([]string{"-created_at", "-item_id"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  q.Text,
		Total:  res.Total,
		Engine: EngineBleve,
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = domain.ContentType(v)
		}
		if v, ok := h.Fields["item_id"].(float64); ok {
			hit.ItemID = int64(v)
		}
		if v, ok := h.Fields["section"].(string); ok {
			hit.Section = v
		}
		if v, ok := h.Fields["category"].(string); ok {
			hit.Category = v
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if frags := h.Fragments["body"]; len(frags) > 0 {
			hit.Snippet = frags[0]
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildSearchQuery matches the text against title and body (boosting
// title), and exactly against tags and classification; the type filter is
// ANDed in.
func buildSearchQuery(q Query) query.Query {
	var queries []query.Query

	if text := strings.TrimSpace(q.Text); text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		bodyMatch := bleve.NewMatchQuery(text)
		bodyMatch.SetField("body")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, bodyMatch, fuzzy}
		for _, field := range []string{"tags", "section", "category"} {
			tq := bleve.NewTermQuery(text)
			tq.SetField(field)
			tq.SetBoost(2.0)
			textQueries = append(textQueries, tq)
		}
		if utf8.RuneCountInString(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if q.Type != "" {
		tq := bleve.NewTermQuery(string(q.Type))
		tq.SetField("type")
		queries = append(queries, tq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
