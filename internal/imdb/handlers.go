package imdb

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for IMDb search.
type Handlers struct {
	client *Client
	logger zerolog.Logger
}

// NewHandlers creates new IMDb handlers.
func NewHandlers(client *Client, logger zerolog.Logger) *Handlers {
	return &Handlers{
		client: client,
		logger: logger.With().Str("component", "imdb-handlers").Logger(),
	}
}

// RegisterRoutes registers the IMDb routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search proxies a title search to the IMDb API.
// GET /api/v1/imdb/search?q=...
//
// Upstream failures are deliberately swallowed: the endpoint answers with an
// empty title list so the search box degrades to "no results" instead of an
// error state. Submission failures, by contrast, are surfaced to the user.
func (h *Handlers) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))

	if utf8.RuneCountInString(query) < MinQueryLength {
		return c.JSON(http.StatusOK, SearchResponse{Titles: []Title{}})
	}

	titles, err := h.client.SearchTitles(c.Request().Context(), query)
	if err != nil {
		h.logger.Warn().Err(err).Str("query", query).Msg("IMDb search failed")
		return c.JSON(http.StatusOK, SearchResponse{Titles: []Title{}})
	}

	if titles == nil {
		titles = []Title{}
	}

	return c.JSON(http.StatusOK, SearchResponse{Titles: titles})
}
