package imdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/config"
)

// MinQueryLength is the minimum query length before a search is issued.
const MinQueryLength = 2

var (
	ErrQueryTooShort = errors.New("search query is too short")
	ErrAPIError      = errors.New("IMDb API error")
)

// Client is a client for the IMDb search API (api.imdbapi.dev).
type Client struct {
	httpClient *http.Client
	config     config.IMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new IMDb search client.
func NewClient(cfg config.IMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "imdb").Logger(),
	}
}

// SearchTitles searches for titles matching the query. Queries shorter than
// MinQueryLength characters are rejected before any network call.
func (c *Client) SearchTitles(ctx context.Context, query string) ([]Title, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	limit := c.config.SearchLimit
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/search/titles?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(searchResp.Titles)).
		Msg("IMDb title search complete")

	return searchResp.Titles, nil
}
