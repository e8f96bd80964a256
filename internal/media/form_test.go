package media

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/imdb"
	"github.com/watchdeck/watchdeck/internal/notion"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results []imdb.Title
	err     error
	delay   time.Duration
}

func (s *fakeSearcher) SearchTitles(ctx context.Context, query string) ([]imdb.Title, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	results, err, delay := s.results, s.err, s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return results, err
}

func (s *fakeSearcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

type fakeSubmitter struct {
	mu     sync.Mutex
	inputs []notion.CreateEntryInput
	err    error
	block  chan struct{}
}

func (s *fakeSubmitter) CreateEntry(ctx context.Context, input notion.CreateEntryInput) error {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	block, err := s.block, s.err
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (s *fakeSubmitter) calls() []notion.CreateEntryInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notion.CreateEntryInput, len(s.inputs))
	copy(out, s.inputs)
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []string
}

func (n *fakeNotifier) Notify(kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, kind)
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.toasts))
	copy(out, n.toasts)
	return out
}

func inception() imdb.Title {
	return imdb.Title{
		ID:           "tt1375666",
		PrimaryTitle: "Inception",
		Type:         "movie",
		StartYear:    2010,
		PrimaryImage: &imdb.Image{URL: "https://images.example.com/inception.jpg"},
	}
}

func newTestForm(searcher *fakeSearcher, submitter *fakeSubmitter, fetcher *fakeFetcher, notifier *fakeNotifier) *Form {
	cache := NewPageCache(fetcher, time.Minute, zerolog.Nop())
	var n Notifier
	if notifier != nil {
		n = notifier
	}
	form := NewForm("db-1", searcher, submitter, cache, n, zerolog.Nop())
	form.SetDebounce(15 * time.Millisecond)
	return form
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestForm_ShortQueryNeverSearches(t *testing.T) {
	searcher := &fakeSearcher{}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetSearchQuery("a")
	form.SetSearchQuery("")

	time.Sleep(80 * time.Millisecond)

	if got := searcher.calls(); len(got) != 0 {
		t.Errorf("search calls = %v, want none for queries below minimum length", got)
	}
	snap := form.Snapshot()
	if len(snap.SearchResults) != 0 || snap.Searching {
		t.Errorf("short query left results=%v searching=%v", snap.SearchResults, snap.Searching)
	}
}

func TestForm_DebounceCollapsesRapidTyping(t *testing.T) {
	searcher := &fakeSearcher{results: []imdb.Title{inception()}}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetSearchQuery("In")
	form.SetSearchQuery("Inc")
	form.SetSearchQuery("Ince")
	form.SetSearchQuery("Inter")

	waitFor(t, time.Second, func() bool { return len(searcher.calls()) == 1 })
	time.Sleep(50 * time.Millisecond)

	calls := searcher.calls()
	if len(calls) != 1 {
		t.Fatalf("search calls = %d, want exactly 1", len(calls))
	}
	if calls[0] != "Inter" {
		t.Errorf("searched query = %q, want last-typed %q", calls[0], "Inter")
	}

	snap := form.Snapshot()
	if len(snap.SearchResults) != 1 || snap.SearchResults[0].ID != "tt1375666" {
		t.Errorf("results = %v, want the single search result", snap.SearchResults)
	}
	if snap.Searching {
		t.Errorf("searching flag still set after completion")
	}
}

func TestForm_ShortQueryCancelsPendingSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []imdb.Title{inception()}}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetSearchQuery("Inter")
	form.SetSearchQuery("I")

	time.Sleep(80 * time.Millisecond)

	if got := searcher.calls(); len(got) != 0 {
		t.Errorf("search calls = %v, want pending search cancelled", got)
	}
}

func TestForm_QueryLengthCountsRunes(t *testing.T) {
	searcher := &fakeSearcher{}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	// One multibyte character is still one character, below the minimum.
	form.SetSearchQuery("é")
	time.Sleep(80 * time.Millisecond)
	if got := searcher.calls(); len(got) != 0 {
		t.Fatalf("search calls = %v, want none for a single-rune query", got)
	}

	form.SetSearchQuery("éé")
	waitFor(t, time.Second, func() bool { return len(searcher.calls()) == 1 })
	if got := searcher.calls(); got[0] != "éé" {
		t.Errorf("searched query = %q, want éé", got[0])
	}
}

func TestForm_SelectionDisplayQuerySchedulesNoSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SelectTitle(inception())

	// Re-sending the display text of the selection, as a UI echo would.
	form.SetSearchQuery("Inception (2010)")

	time.Sleep(80 * time.Millisecond)

	if got := searcher.calls(); len(got) != 0 {
		t.Errorf("search calls = %v, want none for re-displayed selection text", got)
	}
}

func TestForm_SearchFailureClearsResults(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("upstream down")}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetSearchQuery("Inter")

	waitFor(t, time.Second, func() bool { return len(searcher.calls()) == 1 })
	waitFor(t, time.Second, func() bool { return !form.Snapshot().Searching })

	snap := form.Snapshot()
	if len(snap.SearchResults) != 0 {
		t.Errorf("results = %v, want empty after search failure", snap.SearchResults)
	}
}

func TestForm_SelectTitleDerivesFields(t *testing.T) {
	searcher := &fakeSearcher{results: []imdb.Title{inception()}}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetSearchQuery("Inter")
	waitFor(t, time.Second, func() bool { return len(form.Snapshot().SearchResults) == 1 })

	form.SelectTitle(form.Snapshot().SearchResults[0])

	snap := form.Snapshot()
	if snap.IMDBTitle != "Inception" {
		t.Errorf("IMDBTitle = %q", snap.IMDBTitle)
	}
	if snap.IMDBType != "Movie" {
		t.Errorf("IMDBType = %q, want Movie", snap.IMDBType)
	}
	if snap.IMDBURL != "https://www.imdb.com/title/tt1375666/" {
		t.Errorf("IMDBURL = %q", snap.IMDBURL)
	}
	if snap.IMDBPosterURL != "https://images.example.com/inception.jpg" {
		t.Errorf("IMDBPosterURL = %q", snap.IMDBPosterURL)
	}
	if snap.SearchQuery != "Inception (2010)" {
		t.Errorf("SearchQuery = %q, want display text", snap.SearchQuery)
	}
	if len(snap.SearchResults) != 0 {
		t.Errorf("results dropdown not closed: %v", snap.SearchResults)
	}
	if !snap.Valid {
		t.Errorf("form invalid after selection")
	}
}

func TestForm_ClearSelection(t *testing.T) {
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SelectTitle(inception())
	form.ClearSelection()

	snap := form.Snapshot()
	if snap.Selected != nil || snap.IMDBTitle != "" || snap.IMDBURL != "" || snap.SearchQuery != "" {
		t.Errorf("selection not fully cleared: %+v", snap)
	}
	if snap.Valid {
		t.Errorf("form still valid after clear")
	}
}

func TestForm_ModeRoundTripRestoresDefaults(t *testing.T) {
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetMode(SourceOther)
	form.SetOther(OtherForm{Title: "Dune Part Two", Type: "Movie", URL: "https://example.com/dune", PosterURL: "x"})
	form.SetGenre("Sci-Fi")

	form.SetMode(SourceIMDB)
	form.SetMode(SourceOther)

	snap := form.Snapshot()
	if snap.Other != (OtherForm{Type: MediaTypeOptions[0]}) {
		t.Errorf("other form = %+v, want defaults after round trip", snap.Other)
	}
	if snap.Genre != DefaultGenre {
		t.Errorf("genre = %q, want %q", snap.Genre, DefaultGenre)
	}
}

func TestForm_SetModeSameOrInvalidIsNoop(t *testing.T) {
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SelectTitle(inception())
	form.SetGenre("Horror")

	form.SetMode(SourceIMDB)
	form.SetMode(SourceType("bogus"))

	snap := form.Snapshot()
	if snap.Selected == nil {
		t.Errorf("selection dropped by no-op mode set")
	}
	if snap.Genre != "Horror" {
		t.Errorf("genre = %q, want Horror preserved", snap.Genre)
	}
}

func TestForm_ModeSwitchClearsLeftMode(t *testing.T) {
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	form.SelectTitle(inception())
	form.SetMode(SourceOther)

	snap := form.Snapshot()
	if snap.Selected != nil || snap.IMDBURL != "" {
		t.Errorf("IMDb fields survived switch to other mode: %+v", snap)
	}
}

func TestForm_SetGenre(t *testing.T) {
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
	defer form.Close()

	if !form.SetGenre("Thriller") {
		t.Errorf("SetGenre(Thriller) = false, want accepted")
	}
	if form.SetGenre("Jazz") {
		t.Errorf("SetGenre(Jazz) = true, want rejected")
	}
	if got := form.Snapshot().Genre; got != "Thriller" {
		t.Errorf("genre = %q, want Thriller", got)
	}
}

func TestForm_IsFormValid(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Form)
		want  bool
	}{
		{"imdb no selection", func(f *Form) {}, false},
		{"imdb with selection", func(f *Form) { f.SelectTitle(inception()) }, true},
		{"other all empty", func(f *Form) {
			f.SetMode(SourceOther)
			f.SetOther(OtherForm{})
		}, false},
		{"other missing url", func(f *Form) {
			f.SetMode(SourceOther)
			f.SetOther(OtherForm{Title: "X", Type: "Movie"})
		}, false},
		{"other missing title", func(f *Form) {
			f.SetMode(SourceOther)
			f.SetOther(OtherForm{Type: "Movie", URL: "https://example.com"})
		}, false},
		{"other missing type", func(f *Form) {
			f.SetMode(SourceOther)
			f.SetOther(OtherForm{Title: "X", URL: "https://example.com"})
		}, false},
		{"other complete", func(f *Form) {
			f.SetMode(SourceOther)
			f.SetOther(OtherForm{Title: "X", Type: "Movie", URL: "https://example.com"})
		}, true},
		{"other defaults only type", func(f *Form) { f.SetMode(SourceOther) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, &fakeFetcher{}, nil)
			defer form.Close()
			tt.setup(form)
			if got := form.IsFormValid(); got != tt.want {
				t.Errorf("IsFormValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForm_SubmitInvalidIsNoop(t *testing.T) {
	submitter := &fakeSubmitter{}
	form := newTestForm(&fakeSearcher{}, submitter, &fakeFetcher{}, nil)
	defer form.Close()

	if err := form.Submit(context.Background()); err != nil {
		t.Errorf("Submit() on invalid form returned %v, want nil", err)
	}
	if got := submitter.calls(); len(got) != 0 {
		t.Errorf("submitter called %d times on invalid form", len(got))
	}
}

func TestForm_SubmitIMDBSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{}
	notifier := &fakeNotifier{}
	form := newTestForm(&fakeSearcher{}, submitter, fetcher, notifier)
	defer form.Close()

	// Warm the cache so invalidation is observable as a second fetch.
	if _, err := form.IsDuplicate(context.Background(), "tt1375666"); err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	fetchesBefore := fetcher.count()

	form.SelectTitle(inception())
	form.SetGenre("Sci-Fi")

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	calls := submitter.calls()
	if len(calls) != 1 {
		t.Fatalf("submitter called %d times, want 1", len(calls))
	}
	input := calls[0]
	if input.DatabaseID != "db-1" || input.Title != "Inception" || input.Type != "Movie" ||
		input.URL != "https://www.imdb.com/title/tt1375666/" || input.Genre != "Sci-Fi" ||
		input.PosterURL != "https://images.example.com/inception.jpg" {
		t.Errorf("payload = %+v", input)
	}

	snap := form.Snapshot()
	if snap.Selected != nil || snap.SearchQuery != "" || snap.Genre != DefaultGenre {
		t.Errorf("form not reset after success: %+v", snap)
	}
	if got := notifier.kinds(); len(got) != 1 || got[0] != ToastSuccess {
		t.Errorf("toasts = %v, want one success", got)
	}

	// Invalidation forces the next duplicate lookup to refetch.
	if _, err := form.IsDuplicate(context.Background(), "tt1375666"); err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if fetcher.count() != fetchesBefore+1 {
		t.Errorf("fetches = %d, want cache invalidated after submit", fetcher.count())
	}
}

func TestForm_SubmitOtherSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}
	form := newTestForm(&fakeSearcher{}, submitter, &fakeFetcher{}, nil)
	defer form.Close()

	form.SetMode(SourceOther)
	form.SetOther(OtherForm{Title: "Blue Eye Samurai", Type: "Anime", URL: "https://example.com/bes"})

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	calls := submitter.calls()
	if len(calls) != 1 {
		t.Fatalf("submitter called %d times, want 1", len(calls))
	}
	if calls[0].Title != "Blue Eye Samurai" || calls[0].Type != "Anime" {
		t.Errorf("payload = %+v", calls[0])
	}

	snap := form.Snapshot()
	if snap.Other != (OtherForm{Type: MediaTypeOptions[0]}) {
		t.Errorf("other form not reset: %+v", snap.Other)
	}
}

func TestForm_SubmitFailureKeepsFields(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("notion says no")}
	notifier := &fakeNotifier{}
	form := newTestForm(&fakeSearcher{}, submitter, &fakeFetcher{}, notifier)
	defer form.Close()

	form.SelectTitle(inception())

	if err := form.Submit(context.Background()); err == nil {
		t.Fatalf("Submit() error = nil, want submission failure")
	}

	snap := form.Snapshot()
	if snap.Selected == nil || snap.IMDBTitle != "Inception" {
		t.Errorf("fields cleared on failure: %+v", snap)
	}
	if snap.Submitting {
		t.Errorf("submitting flag stuck after failure")
	}
	if got := notifier.kinds(); len(got) != 1 || got[0] != ToastError {
		t.Errorf("toasts = %v, want one error", got)
	}
}

func TestForm_SubmitSingleFlight(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	form := newTestForm(&fakeSearcher{}, submitter, &fakeFetcher{}, nil)
	defer form.Close()

	form.SelectTitle(inception())

	done := make(chan struct{})
	go func() {
		form.Submit(context.Background())
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return form.Snapshot().Submitting })

	// Second submit while the first is in flight must not reach the submitter.
	if err := form.Submit(context.Background()); err != nil {
		t.Errorf("overlapping Submit() error = %v, want silent no-op", err)
	}

	close(submitter.block)
	<-done

	if got := submitter.calls(); len(got) != 1 {
		t.Errorf("submitter called %d times, want 1", len(got))
	}
}

func TestForm_IsDuplicate(t *testing.T) {
	url := "https://www.imdb.com/title/tt1375666/"
	fetcher := &fakeFetcher{pages: []notion.Page{{ID: "p1", InfoURL: &url}, {ID: "p2"}}}
	form := newTestForm(&fakeSearcher{}, &fakeSubmitter{}, fetcher, nil)
	defer form.Close()

	dup, err := form.IsDuplicate(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if !dup {
		t.Errorf("IsDuplicate(tt1375666) = false, want true")
	}

	dup, err = form.IsDuplicate(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if dup {
		t.Errorf("IsDuplicate(tt0133093) = true, want false")
	}
}

func TestForm_CloseCancelsPendingSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	form := newTestForm(searcher, &fakeSubmitter{}, &fakeFetcher{}, nil)

	form.SetSearchQuery("Inter")
	form.Close()

	time.Sleep(80 * time.Millisecond)

	if got := searcher.calls(); len(got) != 0 {
		t.Errorf("search fired after Close(): %v", got)
	}
}
