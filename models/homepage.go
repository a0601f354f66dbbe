package models

import "time"

// Featured is the title shown in the hero banner.
type Featured struct {
	Item       CatalogItem `json:"item"`
	TrailerKey string      `json:"trailerKey,omitempty"` // empty in image-only mode
	EmbedURL   string      `json:"embedUrl,omitempty"`
	ImageURL   string      `json:"imageUrl,omitempty"`
}

// HasVideo reports whether the hero autoplays a trailer.
func (f Featured) HasVideo() bool {
	return f.TrailerKey != ""
}

// Section is a built content row: eligible items in catalog order.
type Section struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	CategoryID int64         `json:"categoryId"`
	Items      []CatalogItem `json:"items"`
}

// Homepage is an immutable snapshot of the hero and all rows.
type Homepage struct {
	Hero     *Featured `json:"hero,omitempty"`
	Sections []Section `json:"sections"`
	BuiltAt  time.Time `json:"builtAt"`
}

// Section returns the section with the given ID.
func (h *Homepage) Section(id string) (Section, bool) {
	if h == nil {
		return Section{}, false
	}
	for _, s := range h.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// RowWindow is the visible part of a row for one visitor.
type RowWindow struct {
	SectionID string        `json:"sectionId"`
	Label     string        `json:"label"`
	Offset    int           `json:"offset"`
	Total     int           `json:"total"`
	HasPrev   bool          `json:"hasPrev"`
	HasNext   bool          `json:"hasNext"`
	Items     []CatalogItem `json:"items"`
}
