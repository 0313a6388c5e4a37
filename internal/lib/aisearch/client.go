package aisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"property_search/internal/config"
	"property_search/internal/domain"
)

// Client клиент AI-поиска (/compare/search).
type Client interface {
	// SearchByAIPrompt возвращает облегчённые записи в порядке релевантности.
	SearchByAIPrompt(ctx context.Context, prompt string) ([]domain.AIResultRef, error)
	// IsEnabled проверяет, включен ли сервис.
	IsEnabled() bool
}

type client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewClient создаёт клиент AI-поиска. При выключенном сервисе возвращает заглушку.
func NewClient(cfg config.AISearchConfig, log *slog.Logger) Client {
	if !cfg.Enabled {
		return &noopClient{log: log}
	}

	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log,
	}
}

func (c *client) SearchByAIPrompt(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
	const op = "aisearch.Client.SearchByAIPrompt"

	u := fmt.Sprintf("%s/compare/search?%s", c.baseURL, url.Values{"query": {prompt}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("sending ai search request", slog.String("op", op), slog.Int("prompt_len", len(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to send request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status code %d: %s", op, resp.StatusCode, string(body))
	}

	refs, err := decodeRefs(body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	c.log.Debug("ai search completed", slog.String("op", op), slog.Int("results_count", len(refs)))
	return refs, nil
}

func (c *client) IsEnabled() bool {
	return true
}

// decodeRefs принимает и голый массив, и обёртку {"data": [...]}.
func decodeRefs(body []byte) ([]domain.AIResultRef, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.AIResultRef{}, nil
	}

	var refs []domain.AIResultRef
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &refs); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Data []domain.AIResultRef `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		refs = wrapped.Data
	}

	if refs == nil {
		refs = []domain.AIResultRef{}
	}
	return refs, nil
}

// noopClient заглушка для выключенного AI-поиска: результатов нет.
type noopClient struct {
	log *slog.Logger
}

func (c *noopClient) SearchByAIPrompt(_ context.Context, _ string) ([]domain.AIResultRef, error) {
	c.log.Debug("ai search is disabled, returning empty result")
	return []domain.AIResultRef{}, nil
}

func (c *noopClient) IsEnabled() bool {
	return false
}
