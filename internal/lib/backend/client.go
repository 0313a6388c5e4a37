package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"property_search/internal/config"
	"property_search/internal/domain"
)

// Client клиент REST-бэкенда каталога.
type Client interface {
	// SearchByQuery поиск по фасетам (/property/search).
	SearchByQuery(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error)
	// SearchByText текстовый поиск (/property/text).
	SearchByText(ctx context.Context, text string) ([]domain.Property, error)
	// FetchPropertyByID полная запись по ID. Для отсутствующей записи ErrPropertyNotFound.
	FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error)
	// ListProperties весь каталог: getAll для администратора, get для публичного доступа.
	ListProperties(ctx context.Context, privileged bool) ([]domain.Property, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *slog.Logger
}

// NewClient создаёт клиент бэкенда. BaseURL включает префикс gateway, например http://host/properties.
func NewClient(cfg config.BackendConfig, log *slog.Logger) Client {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		log:     log,
	}
}

func (c *client) SearchByQuery(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
	const op = "backend.Client.SearchByQuery"

	var out []domain.Property
	if err := c.get(ctx, "/property/search", q.Values(), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Debug("search by query completed",
		slog.String("op", op),
		slog.Int("results_count", len(out)),
	)
	return nonNil(out), nil
}

func (c *client) SearchByText(ctx context.Context, text string) ([]domain.Property, error) {
	const op = "backend.Client.SearchByText"

	var out []domain.Property
	if err := c.get(ctx, "/property/text", url.Values{"value": {text}}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(out), nil
}

func (c *client) FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error) {
	const op = "backend.Client.FetchPropertyByID"

	var out domain.Property
	if err := c.get(ctx, "/property/getById/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (c *client) ListProperties(ctx context.Context, privileged bool) ([]domain.Property, error) {
	const op = "backend.Client.ListProperties"

	path := "/property/get"
	if privileged {
		path = "/property/getAll"
	}

	var out []domain.Property
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(out), nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrPropertyNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func nonNil(items []domain.Property) []domain.Property {
	if items == nil {
		return []domain.Property{}
	}
	return items
}

// CatalogSource загружает каталог через бэкенд.
type CatalogSource struct {
	Client     Client
	Privileged bool
}

func (s CatalogSource) LoadCatalog(ctx context.Context) ([]domain.Property, error) {
	return s.Client.ListProperties(ctx, s.Privileged)
}
