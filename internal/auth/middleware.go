package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Middleware guards routes behind the session cookie. Unauthenticated API
// calls get 401; unauthenticated page navigation is redirected to /login.
type Middleware struct {
	service *Service
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireSession returns middleware that rejects requests without a valid
// session cookie.
func (m *Middleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.validSession(c) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
	}
}

// RedirectToLogin returns middleware for page routes: anything but the login
// page redirects to /login when the session cookie is absent or invalid.
func (m *Middleware) RedirectToLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if path == "/login" || strings.HasPrefix(path, "/assets/") {
				return next(c)
			}
			if m.validSession(c) {
				return next(c)
			}
			return c.Redirect(http.StatusFound, "/login")
		}
	}
}

func (m *Middleware) validSession(c echo.Context) bool {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = m.service.ValidateToken(cookie.Value)
	return err == nil
}
