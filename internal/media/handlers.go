package media

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/watchdeck/watchdeck/internal/imdb"
)

// Handlers exposes the form coordinator over HTTP so the frontend drives the
// state machine through the API.
type Handlers struct {
	registry *Registry
}

// NewHandlers creates new form session handlers.
func NewHandlers(registry *Registry) *Handlers {
	return &Handlers{registry: registry}
}

// RegisterRoutes registers the form session routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/options", h.GetOptions)

	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.DELETE("/sessions/:id", h.DeleteSession)

	g.PUT("/sessions/:id/mode", h.SetMode)
	g.PUT("/sessions/:id/query", h.SetQuery)
	g.POST("/sessions/:id/select", h.SelectTitle)
	g.POST("/sessions/:id/clear", h.ClearSelection)
	g.PUT("/sessions/:id/other", h.SetOther)
	g.PUT("/sessions/:id/genre", h.SetGenre)
	g.POST("/sessions/:id/submit", h.Submit)
	g.GET("/sessions/:id/duplicate", h.CheckDuplicate)
}

// GetOptions returns the fixed option sets the form offers.
// GET /api/v1/form/options
func (h *Handlers) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"genres":       GenreOptions,
		"mediaTypes":   MediaTypeOptions,
		"defaultGenre": DefaultGenre,
	})
}

type createSessionRequest struct {
	DatabaseID string `json:"databaseId"`
}

type sessionResponse struct {
	SessionID string   `json:"sessionId"`
	State     Snapshot `json:"state"`
}

// CreateSession starts a form session for a database.
// POST /api/v1/form/sessions
func (h *Handlers) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DatabaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "database ID is required")
	}

	session := h.registry.Create(req.DatabaseID)
	return c.JSON(http.StatusCreated, sessionResponse{
		SessionID: session.ID,
		State:     session.Form.Snapshot(),
	})
}

// GetSession returns the current form state.
// GET /api/v1/form/sessions/:id
func (h *Handlers) GetSession(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// DeleteSession tears the session down, cancelling any pending search.
// DELETE /api/v1/form/sessions/:id
func (h *Handlers) DeleteSession(c echo.Context) error {
	if err := h.registry.Remove(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

type setModeRequest struct {
	Mode SourceType `json:"mode"`
}

// SetMode switches the active entry mode.
// PUT /api/v1/form/sessions/:id/mode
func (h *Handlers) SetMode(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req setModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Mode != SourceIMDB && req.Mode != SourceOther {
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be \"imdb\" or \"other\"")
	}

	session.Form.SetMode(req.Mode)
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

type setQueryRequest struct {
	Query string `json:"query"`
}

// SetQuery updates the live search query, scheduling a debounced search.
// PUT /api/v1/form/sessions/:id/query
func (h *Handlers) SetQuery(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req setQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.Form.SetSearchQuery(req.Query)
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// SelectTitle adopts a search result as the selection.
// POST /api/v1/form/sessions/:id/select
func (h *Handlers) SelectTitle(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var title imdb.Title
	if err := c.Bind(&title); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if title.ID == "" || title.PrimaryTitle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title id and primaryTitle are required")
	}

	session.Form.SelectTitle(title)
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// ClearSelection resets the IMDb-derived fields and search state.
// POST /api/v1/form/sessions/:id/clear
func (h *Handlers) ClearSelection(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	session.Form.ClearSelection()
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// SetOther updates the freeform entry fields.
// PUT /api/v1/form/sessions/:id/other
func (h *Handlers) SetOther(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var other OtherForm
	if err := c.Bind(&other); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.Form.SetOther(other)
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

type setGenreRequest struct {
	Genre string `json:"genre"`
}

// SetGenre sets the genre selection.
// PUT /api/v1/form/sessions/:id/genre
func (h *Handlers) SetGenre(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req setGenreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !session.Form.SetGenre(req.Genre) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown genre")
	}

	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// Submit posts the assembled payload to the target database. The outcome is
// reported through the state snapshot and the notification channel; an
// invalid form or an in-flight submission makes this a silent no-op.
// POST /api/v1/form/sessions/:id/submit
func (h *Handlers) Submit(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	// The form notifies the user itself; submission errors do not become
	// HTTP errors here.
	_ = session.Form.Submit(c.Request().Context())

	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.ID, State: session.Form.Snapshot()})
}

// CheckDuplicate reports whether a title is already in the database.
// GET /api/v1/form/sessions/:id/duplicate?imdbId=...
func (h *Handlers) CheckDuplicate(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	imdbID := c.QueryParam("imdbId")
	if imdbID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "imdbId is required")
	}

	duplicate, err := session.Form.IsDuplicate(c.Request().Context(), imdbID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check for duplicates: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]bool{"duplicate": duplicate})
}

func (h *Handlers) session(c echo.Context) (*Session, error) {
	session, err := h.registry.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return session, nil
}
