package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"marquee/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

// Helper for JSON error responses
func jsonError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func parseTitleID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseTitleRef splits references such as "movie-603" or "tv-1399".
func parseTitleRef(ref string) (models.MediaKind, int64, bool) {
	idx := strings.LastIndex(ref, "-")
	if idx <= 0 {
		return "", 0, false
	}
	id, ok := parseTitleID(ref[idx+1:])
	if !ok {
		return "", 0, false
	}
	return models.ParseMediaKind(ref[:idx]), id, true
}

func titleRef(item models.CatalogItem) string {
	return item.Kind.APIPath() + "-" + strconv.FormatInt(item.ID, 10)
}

// truncate shortens text to at most limit runes, appending "..." when cut.
func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
