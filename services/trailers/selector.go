// Package trailers decides which video a title should autoplay and remembers,
// per title, whether such a video exists.
package trailers

import (
	"strings"

	"marquee/models"
)

// SupportedSite is the only video host the player can embed.
const SupportedSite = "YouTube"

var excludedNameTerms = []string{"short", "dub"}

// SelectBest picks the best playable trailer from a video listing, or nil.
//
// Only YouTube records qualify. Shorts and dubs are skipped unless nothing
// else is left. Among the rest the first official trailer wins, then the
// first trailer, teaser, clip, and finally the first remaining record.
func SelectBest(records []models.VideoRecord) *models.VideoRecord {
	supported := make([]models.VideoRecord, 0, len(records))
	for _, r := range records {
		if r.Site == SupportedSite {
			supported = append(supported, r)
		}
	}
	if len(supported) == 0 {
		return nil
	}

	candidates := make([]models.VideoRecord, 0, len(supported))
	for _, r := range supported {
		if !hasExcludedTerm(r.Name) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		candidates = supported
	}

	priorities := []func(models.VideoRecord) bool{
		func(r models.VideoRecord) bool { return r.Type == "Trailer" && r.Official },
		func(r models.VideoRecord) bool { return r.Type == "Trailer" },
		func(r models.VideoRecord) bool { return r.Type == "Teaser" },
		func(r models.VideoRecord) bool { return r.Type == "Clip" },
	}
	for _, match := range priorities {
		for _, r := range candidates {
			if match(r) {
				best := r
				return &best
			}
		}
	}
	best := candidates[0]
	return &best
}

// SelectBestKey is SelectBest reduced to the playback key ("" when none).
func SelectBestKey(records []models.VideoRecord) string {
	if best := SelectBest(records); best != nil {
		return best.Key
	}
	return ""
}

func hasExcludedTerm(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range excludedNameTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
