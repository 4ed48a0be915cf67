package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/search"
	"github.com/arcanaoficial/arcana-server/internal/service"
)

// SearchHandle wraps the search service with shutdown capability.
type SearchHandle struct {
	*search.Service
}

// Shutdown implements do.Shutdownable.
func (h *SearchHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearch provides the search service: the local Bleve index, plus
// Meilisearch when MEILI_URL is set.
func ProvideSearch(i do.Injector) (*SearchHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Search.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	var meili *search.Meili
	if cfg.Search.MeiliURL != "" {
		meili = search.NewMeili(cfg.Search.MeiliURL, cfg.Search.MeiliAPIKey, log.Logger)
	}

	svc := search.NewService(index, meili, log.Logger)
	docCount, _ := svc.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "engine", svc.Engine())

	return &SearchHandle{Service: svc}, nil
}

// ReindexSearch rebuilds the index from the store in the background. The
// store may be written by other clients, so the index is never trusted
// across restarts.
func ReindexSearch(i do.Injector) {
	searchHandle := do.MustInvoke[*SearchHandle](i)
	content := do.MustInvoke[*service.ContentService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		ctx := context.Background()
		docs, err := content.SearchDocuments(ctx)
		if err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		if err := searchHandle.Reindex(docs); err != nil {
			log.Error("Search reindex failed", "error", err)
		}
	}()
}
