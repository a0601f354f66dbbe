package models

import "strings"

// MediaKind distinguishes movies from series.
type MediaKind string

const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// ParseMediaKind maps the spellings used by TMDB and the browser to a kind.
// Anything that is not recognisably a series is treated as a movie.
func ParseMediaKind(value string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tv", "series", "show", "shows":
		return MediaKindSeries
	default:
		return MediaKindMovie
	}
}

// APIPath returns the TMDB path segment for the kind ("movie" or "tv").
func (k MediaKind) APIPath() string {
	if k == MediaKindSeries {
		return "tv"
	}
	return "movie"
}

// CatalogItem is a single title as listed by the catalog.
type CatalogItem struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	BackdropPath string    `json:"backdropPath"`
	Kind         MediaKind `json:"kind"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Overview     string    `json:"overview,omitempty"`
}

// HasBackdrop reports whether the item carries the image needed to render a card.
func (i CatalogItem) HasBackdrop() bool {
	return strings.TrimSpace(i.BackdropPath) != ""
}

// Category is a genre the homepage builds a row for.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
