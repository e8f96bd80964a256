package imdb

// Title is a single search result from the IMDb search API.
// Immutable once received.
type Title struct {
	ID           string  `json:"id"`
	PrimaryTitle string  `json:"primaryTitle"`
	Type         string  `json:"type"`
	StartYear    int     `json:"startYear,omitempty"`
	PrimaryImage *Image  `json:"primaryImage,omitempty"`
	RuntimeSecs  int     `json:"runtimeSeconds,omitempty"`
	Rating       *Rating `json:"rating,omitempty"`
}

// Image holds a poster image reference.
type Image struct {
	URL string `json:"url"`
}

// Rating holds the aggregate rating for a title.
type Rating struct {
	AggregateRating float64 `json:"aggregateRating"`
	VoteCount       int     `json:"voteCount,omitempty"`
}

// SearchResponse is the wire format of the search endpoint.
type SearchResponse struct {
	Titles []Title `json:"titles"`
}
