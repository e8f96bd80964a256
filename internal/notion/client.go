package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/config"
)

// pageSize is the batch size used for database query pagination.
const pageSize = 100

// infoProperty is the URL-typed property extracted from each database page.
const infoProperty = "Info"

var (
	ErrAPIKeyMissing      = errors.New("notion API key is not configured")
	ErrDatabaseIDRequired = errors.New("database ID is required")
	ErrAPIError           = errors.New("notion API error")
)

// Client is a Notion API client.
type Client struct {
	httpClient *http.Client
	config     config.NotionConfig
	logger     zerolog.Logger
}

// NewClient creates a new Notion client.
func NewClient(cfg config.NotionConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "notion").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// DatabaseIDs returns the configured database identifiers.
func (c *Client) DatabaseIDs() []string {
	return c.config.DatabaseIDs
}

// QueryDatabasePages retrieves every page of the database, extracting the
// "Info" URL from each. Pages are fetched strictly in cursor order, one batch
// at a time, and appended in request order. Any non-success response aborts
// the loop and discards partial results.
func (c *Client) QueryDatabasePages(ctx context.Context, databaseID string) ([]Page, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if databaseID == "" {
		return nil, ErrDatabaseIDRequired
	}

	var allPages []Page
	cursor := ""
	hasMore := true
	requests := 0

	for hasMore {
		body := queryRequest{PageSize: pageSize}
		if cursor != "" {
			body.StartCursor = cursor
		}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", databaseID), body, &resp); err != nil {
			return nil, err
		}
		requests++

		for _, page := range resp.Results {
			allPages = append(allPages, Page{
				ID:      page.ID,
				InfoURL: extractInfoURL(page),
			})
		}

		hasMore = resp.HasMore
		if resp.NextCursor != nil {
			cursor = *resp.NextCursor
		} else {
			cursor = ""
		}
	}

	c.logger.Debug().
		Str("databaseId", databaseID).
		Int("pages", len(allPages)).
		Int("requests", requests).
		Msg("Fetched database pages")

	return allPages, nil
}

// extractInfoURL returns the Info property's URL if it is URL-typed and set.
// Pages without it still appear in the result, with a nil URL.
func extractInfoURL(page rawPage) *string {
	prop, ok := page.Properties[infoProperty]
	if !ok {
		return nil
	}
	if prop.Type != "url" || prop.URL == nil || *prop.URL == "" {
		return nil
	}
	return prop.URL
}

// CreateEntry appends a new media entry page to the database. The poster URL,
// when present, becomes the page cover.
func (c *Client) CreateEntry(ctx context.Context, input CreateEntryInput) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}
	if input.DatabaseID == "" {
		return ErrDatabaseIDRequired
	}

	properties := map[string]any{
		"Name": map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": input.Title}},
			},
		},
		"Type": map[string]any{
			"select": map[string]any{"name": input.Type},
		},
		"Genre": map[string]any{
			"select": map[string]any{"name": input.Genre},
		},
		"Info": map[string]any{
			"url": input.URL,
		},
		"Status": map[string]any{
			"status": map[string]any{"name": "To Watch"},
		},
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": input.DatabaseID},
		"properties": properties,
	}

	if input.PosterURL != "" {
		body["cover"] = map[string]any{
			"type":     "external",
			"external": map[string]any{"url": input.PosterURL},
		}
	}

	if err := c.do(ctx, http.MethodPost, "/pages", body, nil); err != nil {
		return err
	}

	c.logger.Info().
		Str("databaseId", input.DatabaseID).
		Str("title", input.Title).
		Msg("Created database entry")

	return nil
}

// RetrieveDatabase fetches a database summary by ID.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if databaseID == "" {
		return nil, ErrDatabaseIDRequired
	}

	var raw rawDatabase
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &raw); err != nil {
		return nil, err
	}

	return normalizeDatabase(raw), nil
}

// RetrieveDatabaseProperties fetches the raw property schema of a database.
func (c *Client) RetrieveDatabaseProperties(ctx context.Context, databaseID string) (map[string]map[string]any, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if databaseID == "" {
		return nil, ErrDatabaseIDRequired
	}

	var raw rawDatabase
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &raw); err != nil {
		return nil, err
	}

	return raw.Properties, nil
}

// Me fetches the user the integration token belongs to, plus the workspace
// when the token is a workspace-owned bot.
func (c *Client) Me(ctx context.Context) (*User, *Workspace, error) {
	if !c.IsConfigured() {
		return nil, nil, ErrAPIKeyMissing
	}

	var raw rawUser
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &raw); err != nil {
		return nil, nil, err
	}

	var user *User
	var workspace *Workspace

	switch raw.Type {
	case "person":
		if raw.Person != nil && raw.Person.Email != "" {
			user = &User{Name: nameOr(raw.Name, "Unknown User"), AvatarURL: raw.AvatarURL}
		}
	case "bot":
		user = &User{Name: nameOr(raw.Name, "Bot User"), AvatarURL: raw.AvatarURL}
		if raw.Bot != nil && raw.Bot.Owner.Type == "workspace" && raw.Bot.Owner.Workspace {
			workspace = &Workspace{Name: nameOr(raw.Bot.WorkspaceName, "Workspace")}
		}
	}

	return user, workspace, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func normalizeDatabase(raw rawDatabase) *Database {
	db := &Database{
		ID:             raw.ID,
		Title:          "Untitled Database",
		LastEditedTime: raw.LastEditedTime,
	}

	if len(raw.Title) > 0 && raw.Title[0].PlainText != "" {
		db.Title = raw.Title[0].PlainText
	}

	if raw.Icon != nil {
		if raw.Icon.Emoji != "" {
			db.Icon = raw.Icon.Emoji
		} else if raw.Icon.External != nil {
			db.Icon = raw.Icon.External.URL
		}
	}

	return db
}

// do performs a Notion API request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Notion-Version", c.config.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
