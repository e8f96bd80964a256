package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type StatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Handlers provides HTTP handlers for authentication.
type Handlers struct {
	service *Service
	secure  bool
}

// NewHandlers creates new auth handlers. secure controls the cookie's Secure
// flag; disable it for plain-HTTP development.
func NewHandlers(service *Service, secure bool) *Handlers {
	return &Handlers{service: service, secure: secure}
}

// RegisterRoutes registers the auth routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/status", h.Status)
}

// Login compares the submitted password against the configured secret and,
// on match, sets the HTTP-only SameSite-Strict session cookie.
// POST /api/v1/auth/login
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	if err := h.service.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}

	token, err := h.service.GenerateToken()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.SessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the session cookie.
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Status reports whether the request carries a valid session cookie.
// GET /api/v1/auth/status
func (h *Handlers) Status(c echo.Context) error {
	authenticated := false
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if _, err := h.service.ValidateToken(cookie.Value); err == nil {
			authenticated = true
		}
	}

	return c.JSON(http.StatusOK, StatusResponse{Authenticated: authenticated})
}
