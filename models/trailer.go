package models

// VideoRecord is one entry of a title's video listing.
type VideoRecord struct {
	Site     string `json:"site"`
	Name     string `json:"name"`
	Type     string `json:"type"` // Trailer, Teaser, Clip, Featurette, ...
	Official bool   `json:"official"`
	Key      string `json:"key"`
}

// TrailerLookup is the response of the per-title trailer endpoint.
type TrailerLookup struct {
	ID         int64     `json:"id"`
	Kind       MediaKind `json:"kind"`
	HasTrailer bool      `json:"hasTrailer"`
	TrailerKey string    `json:"trailerKey,omitempty"`
	EmbedURL   string    `json:"embedUrl,omitempty"`
}
