package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"property_search/internal/config"
	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"

	"github.com/meilisearch/meilisearch-go"
)

const defaultLimit = 100

// Client текстовый поиск по индексу Meilisearch вместо /property/text.
type Client struct {
	client *meilisearch.Client
	index  string
	limit  int64
	log    *slog.Logger
}

func NewClient(cfg config.TextSearchConfig, log *slog.Logger) *Client {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	return &Client{
		client: meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   cfg.MeiliHost,
			APIKey: cfg.MeiliKey,
		}),
		index: cfg.MeiliIdx,
		limit: limit,
		log:   log,
	}
}

// SearchByText ищет по заголовку и описанию.
func (c *Client) SearchByText(_ context.Context, text string) ([]domain.Property, error) {
	const op = "meili.Client.SearchByText"

	res, err := c.client.Index(c.index).Search(text, &meilisearch.SearchRequest{
		Limit: c.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	properties := make([]domain.Property, 0, len(res.Hits))
	for _, hit := range res.Hits {
		p, err := decodeHit(hit)
		if err != nil {
			c.log.Warn("skipping malformed hit", slog.String("op", op), sl.Err(err))
			continue
		}
		properties = append(properties, p)
	}

	c.log.Debug("text search completed",
		slog.String("op", op),
		slog.Int("results_count", len(properties)),
		slog.Int64("processing_ms", res.ProcessingTimeMs),
	)
	return properties, nil
}

// IndexProperties заливает каталог в индекс. Индексация асинхронная на стороне Meilisearch.
func (c *Client) IndexProperties(_ context.Context, properties []domain.Property) error {
	const op = "meili.Client.IndexProperties"

	if len(properties) == 0 {
		return nil
	}
	if _, err := c.client.Index(c.index).AddDocuments(properties, "id"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func decodeHit(hit interface{}) (domain.Property, error) {
	raw, err := json.Marshal(hit)
	if err != nil {
		return domain.Property{}, err
	}
	var p domain.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

// Loader источник каталога.
type Loader interface {
	LoadCatalog(ctx context.Context) ([]domain.Property, error)
}

// IndexingSource после каждой загрузки каталога переиндексирует его в Meilisearch.
// Ошибка индексации логируется, загрузка каталога при этом успешна.
type IndexingSource struct {
	Source Loader
	Client *Client
}

func (s IndexingSource) LoadCatalog(ctx context.Context) ([]domain.Property, error) {
	properties, err := s.Source.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Client.IndexProperties(ctx, properties); err != nil {
		s.Client.log.Warn("failed to index catalog", sl.Err(err))
	}
	return properties, nil
}
