package media

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/imdb"
	"github.com/watchdeck/watchdeck/internal/notion"
)

// SearchDebounce is how long input must pause before a search fires.
const SearchDebounce = 300 * time.Millisecond

// Searcher performs a remote title search.
type Searcher interface {
	SearchTitles(ctx context.Context, query string) ([]imdb.Title, error)
}

// Submitter appends a new entry to the target database.
type Submitter interface {
	CreateEntry(ctx context.Context, input notion.CreateEntryInput) error
}

// Notifier receives user-facing toast notifications.
type Notifier interface {
	Notify(kind, message string)
}

// Toast notification kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// OtherForm holds the freeform entry fields.
type OtherForm struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	PosterURL string `json:"posterUrl"`
}

// Form coordinates the two-mode media entry form: debounced remote search,
// selection and clear transitions, and the submission lifecycle. All state
// lives in this struct; derived values are recomputed on read.
type Form struct {
	mu         sync.Mutex
	databaseID string
	searcher   Searcher
	submitter  Submitter
	cache      *PageCache
	notifier   Notifier
	logger     zerolog.Logger

	debounce time.Duration
	timer    *time.Timer
	closed   bool

	sourceType    SourceType
	searchQuery   string
	searchResults []imdb.Title
	searching     bool

	selected      *imdb.Title
	imdbTitle     string
	imdbType      string
	imdbURL       string
	imdbPosterURL string

	genre string
	other OtherForm

	submitting bool
}

// NewForm creates a form coordinator for the given database. The cache and
// notifier are passed in explicitly; the form owns no global state.
func NewForm(databaseID string, searcher Searcher, submitter Submitter, cache *PageCache, notifier Notifier, logger zerolog.Logger) *Form {
	return &Form{
		databaseID: databaseID,
		searcher:   searcher,
		submitter:  submitter,
		cache:      cache,
		notifier:   notifier,
		logger:     logger.With().Str("component", "form").Str("databaseId", databaseID).Logger(),
		debounce:   SearchDebounce,
		sourceType: SourceIMDB,
		genre:      DefaultGenre,
		other:      OtherForm{Type: MediaTypeOptions[0]},
	}
}

// SetDebounce overrides the debounce interval. Used by tests.
func (f *Form) SetDebounce(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debounce = d
}

// DatabaseID returns the target database identifier.
func (f *Form) DatabaseID() string {
	return f.databaseID
}

// SetMode switches the active entry mode. Switching resets the genre and
// clears the fields of the mode being left; setting the current mode again is
// a no-op.
func (f *Form) SetMode(mode SourceType) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if mode != SourceIMDB && mode != SourceOther {
		return
	}
	if mode == f.sourceType {
		return
	}

	f.sourceType = mode
	f.genre = DefaultGenre

	if mode == SourceIMDB {
		f.resetOtherLocked()
	} else {
		f.clearSelectionLocked()
	}
}

// SetSearchQuery updates the live query string. Queries below the minimum
// length clear the result list immediately and cancel any pending search.
// Longer queries schedule a debounced search, replacing any pending timer —
// unless the query is just the re-displayed text of the current selection.
func (f *Form) SetSearchQuery(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searchQuery = text

	if utf8.RuneCountInString(text) < imdb.MinQueryLength {
		f.searchResults = nil
		f.searching = false
		f.stopTimerLocked()
		return
	}

	if f.selected != nil && text == DisplayTitle(*f.selected) {
		return
	}

	f.stopTimerLocked()
	f.timer = time.AfterFunc(f.debounce, func() {
		f.executeSearch(context.Background())
	})
}

// executeSearch fires the remote search for the current query. Failures are
// swallowed into an empty result list; the searching flag always clears.
// If two searches overlap, the later arrival wins regardless of dispatch
// order; the debounce makes overlap rare.
func (f *Form) executeSearch(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	query := f.searchQuery
	if utf8.RuneCountInString(query) < imdb.MinQueryLength {
		f.searchResults = nil
		f.mu.Unlock()
		return
	}
	f.searching = true
	f.mu.Unlock()

	titles, err := f.searcher.SearchTitles(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.logger.Debug().Err(err).Str("query", query).Msg("Search failed, clearing results")
		f.searchResults = nil
	} else {
		f.searchResults = titles
	}
	f.searching = false
}

// SelectTitle adopts a search result as the selected title, derives the
// display fields, and closes the dropdown.
func (f *Form) SelectTitle(title imdb.Title) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := title
	f.selected = &t
	f.imdbTitle = t.PrimaryTitle
	f.imdbType = FormatTitleType(t.Type)
	f.imdbURL = TitleURL(t.ID)
	f.imdbPosterURL = ""
	if t.PrimaryImage != nil {
		f.imdbPosterURL = t.PrimaryImage.URL
	}
	f.searchQuery = DisplayTitle(t)
	f.searchResults = nil
	f.stopTimerLocked()
}

// ClearSelection resets all IMDb-derived fields and search state.
func (f *Form) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearSelectionLocked()
}

// SetGenre sets the genre if it is one of the allowed options.
func (f *Form) SetGenre(genre string) bool {
	if !IsGenre(genre) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.genre = genre
	return true
}

// SetOther updates the freeform entry fields.
func (f *Form) SetOther(other OtherForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.other = other
}

// IsFormValid reports whether the active mode has all required fields.
func (f *Form) IsFormValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isValidLocked()
}

func (f *Form) isValidLocked() bool {
	if f.sourceType == SourceIMDB {
		return f.selected != nil && f.imdbURL != ""
	}
	return f.other.Title != "" && f.other.URL != "" && f.other.Type != ""
}

// Submit assembles the payload from the active mode and posts it to the
// target database. A no-op when the form is invalid or a submission is
// already in flight. On success the existing-pages cache is invalidated and
// the active mode's fields reset; the user is notified either way.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.isValidLocked() || f.submitting {
		f.mu.Unlock()
		return nil
	}
	f.submitting = true

	input := notion.CreateEntryInput{
		DatabaseID: f.databaseID,
		Genre:      f.genre,
	}
	if f.sourceType == SourceIMDB {
		input.Title = f.imdbTitle
		input.Type = f.imdbType
		input.URL = f.imdbURL
		input.PosterURL = f.imdbPosterURL
	} else {
		input.Title = f.other.Title
		input.Type = f.other.Type
		input.URL = f.other.URL
		input.PosterURL = f.other.PosterURL
	}
	mode := f.sourceType
	f.mu.Unlock()

	err := f.submitter.CreateEntry(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		f.logger.Error().Err(err).Msg("Submission failed")
		if f.notifier != nil {
			f.notifier.Notify(ToastError, "Failed to add entry. Please try again.")
		}
		return err
	}

	f.cache.Invalidate(f.databaseID)

	if mode == SourceIMDB {
		f.clearSelectionLocked()
	} else {
		f.resetOtherLocked()
	}
	f.genre = DefaultGenre

	if f.notifier != nil {
		f.notifier.Notify(ToastSuccess, "Entry added successfully!")
	}
	return nil
}

// IsDuplicate reports whether the title's canonical IMDb URL is already
// present in the target database.
func (f *Form) IsDuplicate(ctx context.Context, imdbID string) (bool, error) {
	urls, err := f.cache.ExistingURLs(ctx, f.databaseID)
	if err != nil {
		return false, err
	}
	_, ok := urls[TitleURL(imdbID)]
	return ok, nil
}

// Close tears down the coordinator, cancelling any pending debounce timer so
// a stray search cannot fire after disposal.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopTimerLocked()
}

// Snapshot is a point-in-time copy of the form state.
type Snapshot struct {
	DatabaseID    string       `json:"databaseId"`
	SourceType    SourceType   `json:"sourceType"`
	SearchQuery   string       `json:"searchQuery"`
	SearchResults []imdb.Title `json:"searchResults"`
	Searching     bool         `json:"isSearching"`
	Selected      *imdb.Title  `json:"selectedTitle"`
	IMDBTitle     string       `json:"imdbTitle"`
	IMDBType      string       `json:"imdbType"`
	IMDBURL       string       `json:"imdbUrl"`
	IMDBPosterURL string       `json:"imdbPosterUrl"`
	Genre         string       `json:"genre"`
	Other         OtherForm    `json:"otherForm"`
	Submitting    bool         `json:"isSubmitting"`
	Valid         bool         `json:"isFormValid"`
}

// Snapshot returns the current form state for rendering.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]imdb.Title, len(f.searchResults))
	copy(results, f.searchResults)

	var selected *imdb.Title
	if f.selected != nil {
		t := *f.selected
		selected = &t
	}

	return Snapshot{
		DatabaseID:    f.databaseID,
		SourceType:    f.sourceType,
		SearchQuery:   f.searchQuery,
		SearchResults: results,
		Searching:     f.searching,
		Selected:      selected,
		IMDBTitle:     f.imdbTitle,
		IMDBType:      f.imdbType,
		IMDBURL:       f.imdbURL,
		IMDBPosterURL: f.imdbPosterURL,
		Genre:         f.genre,
		Other:         f.other,
		Submitting:    f.submitting,
		Valid:         f.isValidLocked(),
	}
}

func (f *Form) clearSelectionLocked() {
	f.selected = nil
	f.imdbTitle = ""
	f.imdbType = ""
	f.imdbURL = ""
	f.imdbPosterURL = ""
	f.searchQuery = ""
	f.searchResults = nil
	f.stopTimerLocked()
}

func (f *Form) resetOtherLocked() {
	f.other = OtherForm{Type: MediaTypeOptions[0]}
}

func (f *Form) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
