package media

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/watchdeck/watchdeck/internal/imdb"
)

// SourceType selects which of the two data-entry paths is active.
type SourceType string

const (
	SourceIMDB  SourceType = "imdb"
	SourceOther SourceType = "other"
)

// DefaultGenre is the genre every mode switch resets to.
const DefaultGenre = "None"

// GenreOptions is the fixed genre enumeration offered by the form.
var GenreOptions = []string{
	"None",
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Horror",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
}

// MediaTypeOptions is the fixed content-type set for freeform entries.
// The first option is the default.
var MediaTypeOptions = []string{
	"Movie",
	"TV Series",
	"Anime",
	"Documentary",
	"Other",
}

// titleTypeLabels maps IMDb content-type codes to human labels.
var titleTypeLabels = map[string]string{
	"movie":        "Movie",
	"tvSeries":     "TV Series",
	"tvMiniSeries": "TV Mini-Series",
	"tvSpecial":    "TV Special",
	"tvMovie":      "TV Movie",
	"tvShort":      "TV Movie",
	"short":        "Short",
	"video":        "Video",
	"videoGame":    "Video Game",
}

// FormatTitleType renders an IMDb content-type code as a human label.
// Unknown codes get their first letter capitalized instead of failing.
func FormatTitleType(titleType string) string {
	if label, ok := titleTypeLabels[titleType]; ok {
		return label
	}
	if titleType == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(titleType)
	return string(unicode.ToUpper(r)) + titleType[size:]
}

// DisplayTitle renders a title as "<title> (<year>)", with "N/A" for
// year-less candidates.
func DisplayTitle(title imdb.Title) string {
	year := "N/A"
	if title.StartYear != 0 {
		year = fmt.Sprintf("%d", title.StartYear)
	}
	return fmt.Sprintf("%s (%s)", title.PrimaryTitle, year)
}

// TitleURL builds the canonical IMDb detail URL for a title ID. The same
// template is used for derived form URLs and duplicate detection.
func TitleURL(imdbID string) string {
	return fmt.Sprintf("https://www.imdb.com/title/%s/", imdbID)
}

// IsGenre reports whether g is one of the allowed genre options.
func IsGenre(g string) bool {
	for _, option := range GenreOptions {
		if option == g {
			return true
		}
	}
	return false
}
