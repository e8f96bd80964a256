package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestService_Fetch_OpenGraph(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<title>Fallback Title</title>
			<meta property="og:title" content="Blade Runner 2049">
			<meta property="og:image" content="https://images.example.com/br2049.jpg">
		</head><body></body></html>`))
	}))
	defer server.Close()

	s := NewService(zerolog.Nop())
	result, err := s.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Title != "Blade Runner 2049" {
		t.Errorf("Title = %q, want og:title", result.Title)
	}
	if result.ImageURL != "https://images.example.com/br2049.jpg" {
		t.Errorf("ImageURL = %q", result.ImageURL)
	}
}

func TestService_Fetch_TitleFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>  Plain Page  </title></head><body></body></html>`))
	}))
	defer server.Close()

	s := NewService(zerolog.Nop())
	result, err := s.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Title != "Plain Page" {
		t.Errorf("Title = %q, want trimmed document title", result.Title)
	}
	if result.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", result.ImageURL)
	}
}

func TestService_Fetch_InvalidURL(t *testing.T) {
	s := NewService(zerolog.Nop())

	for _, raw := range []string{"", "not a url", "ftp://example.com/f", "/relative"} {
		if _, err := s.Fetch(context.Background(), raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Fetch(%q) error = %v, want %v", raw, err, ErrInvalidURL)
		}
	}
}

func TestService_Fetch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewService(zerolog.Nop())
	if _, err := s.Fetch(context.Background(), server.URL); !errors.Is(err, ErrFetchFail) {
		t.Errorf("Fetch() error = %v, want %v", err, ErrFetchFail)
	}
}

func TestHandlers_GetPreview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Some Page</title></head></html>`))
	}))
	defer server.Close()

	h := NewHandlers(NewService(zerolog.Nop()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/preview?url="+server.URL, nil)
	rec := httptest.NewRecorder()

	if err := h.GetPreview(e.NewContext(req, rec)); err != nil {
		t.Fatalf("GetPreview() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandlers_GetPreview_Errors(t *testing.T) {
	h := NewHandlers(NewService(zerolog.Nop()))

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{"missing url param", "/preview", http.StatusBadRequest},
		{"invalid url", "/preview?url=ftp://x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			err := h.GetPreview(e.NewContext(req, rec))
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.wantCode {
				t.Errorf("error = %v, want HTTP %d", err, tt.wantCode)
			}
		})
	}
}
