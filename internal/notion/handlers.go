package notion

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for Notion operations.
type Handlers struct {
	client *Client
	logger zerolog.Logger
}

// NewHandlers creates new Notion handlers.
func NewHandlers(client *Client, logger zerolog.Logger) *Handlers {
	return &Handlers{
		client: client,
		logger: logger.With().Str("component", "notion-handlers").Logger(),
	}
}

// RegisterRoutes registers the Notion routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/workspace", h.GetWorkspace)
	g.GET("/database/schema", h.GetDatabaseSchema)
	g.GET("/database/:id/pages", h.GetDatabasePages)
	g.POST("/database/add", h.AddEntry)
}

// GetWorkspace returns the integration user, workspace, and the configured
// databases. Individual database failures are collected, not fatal.
// GET /api/v1/notion/workspace
func (h *Handlers) GetWorkspace(c echo.Context) error {
	ctx := c.Request().Context()

	user, workspace, err := h.client.Me(ctx)
	if err != nil {
		return h.upstreamError(err, "failed to fetch Notion workspace")
	}

	data := WorkspaceData{
		User:            user,
		Workspace:       workspace,
		Databases:       []Database{},
		FailedDatabases: []FailedDatabase{},
	}

	for _, databaseID := range h.client.DatabaseIDs() {
		db, err := h.client.RetrieveDatabase(ctx, databaseID)
		if err != nil {
			h.logger.Error().Err(err).Str("databaseId", databaseID).Msg("Failed to fetch database")
			data.FailedDatabases = append(data.FailedDatabases, FailedDatabase{
				ID:     databaseID,
				Reason: err.Error(),
			})
			continue
		}
		data.Databases = append(data.Databases, *db)
	}

	return c.JSON(http.StatusOK, data)
}

// GetDatabasePages returns every page of the database with its Info URL.
// GET /api/v1/notion/database/:id/pages
func (h *Handlers) GetDatabasePages(c echo.Context) error {
	databaseID := c.Param("id")
	if databaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "database ID is required")
	}

	pages, err := h.client.QueryDatabasePages(c.Request().Context(), databaseID)
	if err != nil {
		if errors.Is(err, ErrDatabaseIDRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, "database ID is required")
		}
		return h.upstreamError(err, "failed to fetch database pages")
	}

	if pages == nil {
		pages = []Page{}
	}

	return c.JSON(http.StatusOK, PagesResponse{Pages: pages})
}

// GetDatabaseSchema returns the raw property map of a database.
// GET /api/v1/notion/database/schema?id=...
func (h *Handlers) GetDatabaseSchema(c echo.Context) error {
	databaseID := c.QueryParam("id")
	if databaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "database ID is required")
	}

	properties, err := h.client.RetrieveDatabaseProperties(c.Request().Context(), databaseID)
	if err != nil {
		return h.upstreamError(err, "failed to fetch database schema")
	}

	return c.JSON(http.StatusOK, map[string]any{"properties": properties})
}

// AddEntry appends a new media entry to the database.
// POST /api/v1/notion/database/add
func (h *Handlers) AddEntry(c echo.Context) error {
	var input CreateEntryInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if input.DatabaseID == "" || input.Title == "" || input.Type == "" || input.URL == "" || input.Genre == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}
	if !isWebURL(input.URL) {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid URL is required")
	}
	if input.PosterURL != "" && !isWebURL(input.PosterURL) {
		return echo.NewHTTPError(http.StatusBadRequest, "poster URL must be a valid URL")
	}

	if err := h.client.CreateEntry(c.Request().Context(), input); err != nil {
		h.logger.Error().Err(err).Str("databaseId", input.DatabaseID).Msg("Failed to add entry")
		return h.upstreamError(err, "failed to add entry to database")
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// upstreamError maps client errors onto the HTTP taxonomy: configuration
// problems and provider failures both surface as 500, carrying the cause.
func (h *Handlers) upstreamError(err error, message string) error {
	if errors.Is(err, ErrAPIKeyMissing) {
		return echo.NewHTTPError(http.StatusInternalServerError, "invalid runtime configuration: "+err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, message+": "+err.Error())
}

// isWebURL reports whether s parses as an absolute http(s) URL.
func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
