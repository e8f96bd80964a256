// Package preview fetches lightweight page metadata for freeform link
// entries, so the form can prefill a title and poster image.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidURL = errors.New("invalid preview URL")
	ErrFetchFail  = errors.New("failed to fetch page")
)

// Result holds the extracted page metadata.
type Result struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Service fetches and parses remote pages.
type Service struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewService creates a preview service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "preview").Logger(),
	}
}

// Fetch retrieves the page and extracts og:title/og:image, falling back to
// the document title.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", rawURL).Msg("Preview fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrFetchFail, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFail, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	result := &Result{}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		result.Title = strings.TrimSpace(og)
	} else {
		result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		result.ImageURL = strings.TrimSpace(img)
	}

	return result, nil
}
