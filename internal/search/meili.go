package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const meiliIndex = "arcana_content"

// Meili searches and indexes content in Meilisearch. It tracks server
// health in the background so callers can fall back when it is down.
type Meili struct {
	client  meili.ServiceManager
	logger  *slog.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili connects to url and configures the content index. The returned
// client starts unhealthy when the server cannot be reached.
func NewMeili(url, apiKey string, logger *slog.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		logger: logger,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        meiliIndex,
		PrimaryKey: "id",
	}); err != nil {
		m.logger.Debug("create meilisearch index (may already exist)", "index", meiliIndex, "error", err)
	}

	index := m.client.Index(meiliIndex)
	filterable := []interface{}{"type", "section", "category", "tags"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attributes", "index", meiliIndex, "error", err)
	}
	searchable := []string{"title", "tags", "section", "category", "body"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attributes", "index", meiliIndex, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch answered its last health check.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search runs q in Meilisearch. A request failure marks the client
// unhealthy until the next successful health check.
func (m *Meili) Search(_ context.Context, q Query) (*Result, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	req := &meili.SearchRequest{
		Limit:                 int64(q.limit()),
		Offset:                int64(q.Offset),
		AttributesToHighlight: []string{"body"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
		ShowRankingScore:      true,
	}
	if q.Type != "" {
		req.Filter = []string{fmt.Sprintf("type = %q", string(q.Type))}
	}

	resp, err := m.client.Index(meiliIndex).Search(q.Text, req)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	out := &Result{
		Query:  q.Text,
		Total:  uint64(resp.EstimatedTotalHits),
		Engine: EngineMeili,
		Hits:   make([]Hit, 0, len(resp.Hits)),
	}
	for _, h := range resp.Hits {
		out.Hits = append(out.Hits, hitFromMeili(h))
	}
	return out, nil
}

func hitFromMeili(h meili.Hit) Hit {
	hit := Hit{
		ID:       decodeString(h, "id"),
		Type:     domainType(decodeString(h, "type")),
		Section:  decodeString(h, "section"),
		Category: decodeString(h, "category"),
		Title:    decodeString(h, "title"),
		Snippet:  decodeFormattedString(h, "body"),
	}
	if raw, ok := h["item_id"]; ok {
		_ = json.Unmarshal(raw, &hit.ItemID)
	}
	if raw, ok := h["_rankingScore"]; ok {
		_ = json.Unmarshal(raw, &hit.Score)
	}
	return hit
}

func decodeString(h meili.Hit, key string) string {
	raw, ok := h[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func decodeFormattedString(h meili.Hit, key string) string {
	raw, ok := h["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]any
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	s, _ := formatted[key].(string)
	return strings.TrimSpace(s)
}

// IndexDocuments adds or replaces docs.
func (m *Meili) IndexDocuments(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(meiliIndex).AddDocuments(docs, nil)
	return err
}

// DeleteDocument removes one document.
func (m *Meili) DeleteDocument(id string) error {
	_, err := m.client.Index(meiliIndex).DeleteDocument(id, nil)
	return err
}
