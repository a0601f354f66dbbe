package trailers

import "net/url"

const youtubeEmbedBase = "https://www.youtube.com/embed/"

// HeroEmbedURL builds the muted autoplay URL used in the banner. The JS API
// flag lets the page unmute the player later.
func HeroEmbedURL(key string) string {
	if key == "" {
		return ""
	}
	return youtubeEmbedBase + url.PathEscape(key) + "?autoplay=1&controls=1&mute=1&enablejsapi=1"
}

// ModalEmbedURL builds the autoplay URL used by the details modal.
func ModalEmbedURL(key string) string {
	if key == "" {
		return ""
	}
	return youtubeEmbedBase + url.PathEscape(key) + "?autoplay=1&controls=1"
}
