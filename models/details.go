package models

// TitleDetails is the combined payload behind the details modal.
type TitleDetails struct {
	ID         int64     `json:"id"`
	Kind       MediaKind `json:"kind"`
	Title      string    `json:"title"`
	Year       string    `json:"year"`
	Rating     string    `json:"rating"`
	Genres     string    `json:"genres"`
	Overview   string    `json:"overview"`
	Cast       []string  `json:"cast"`
	TrailerKey string    `json:"trailerKey,omitempty"`
	EmbedURL   string    `json:"embedUrl,omitempty"`

	// Fallback text shown when a section could not be filled.
	VideoMessage string `json:"videoMessage,omitempty"`
	CastMessage  string `json:"castMessage,omitempty"`

	// Per-section failures; the remaining sections are still populated.
	VideoError   string `json:"videoError,omitempty"`
	DetailsError string `json:"detailsError,omitempty"`
	CreditsError string `json:"creditsError,omitempty"`
}

// HasTrailer reports whether the modal can embed a player.
func (d TitleDetails) HasTrailer() bool {
	return d.TrailerKey != ""
}
