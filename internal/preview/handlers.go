package preview

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for link previews.
type Handlers struct {
	service *Service
}

// NewHandlers creates new preview handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the preview routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/preview", h.GetPreview)
}

// GetPreview extracts title and image metadata from a remote page.
// GET /api/v1/link/preview?url=...
func (h *Handlers) GetPreview(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url parameter is required")
	}

	result, err := h.service.Fetch(c.Request().Context(), rawURL)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			return echo.NewHTTPError(http.StatusBadRequest, "a valid http(s) URL is required")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "failed to fetch preview: "+err.Error())
	}

	return c.JSON(http.StatusOK, result)
}
