package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"marquee/models"
)

type trailerLookup interface {
	Lookup(ctx context.Context, item models.CatalogItem) models.TrailerLookup
}

// TrailersHandler answers whether a single title has a playable trailer,
// through the shared availability cache.
type TrailersHandler struct {
	trailers trailerLookup
}

func NewTrailersHandler(trailers trailerLookup) *TrailersHandler {
	return &TrailersHandler{trailers: trailers}
}

// GetTrailer serves GET /api/trailers/{kind}/{id}.
func (h *TrailersHandler) GetTrailer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := parseTitleID(vars["id"])
	if !ok {
		jsonError(w, "invalid title id", http.StatusBadRequest)
		return
	}
	item := models.CatalogItem{ID: id, Kind: models.ParseMediaKind(vars["kind"])}
	writeJSON(w, http.StatusOK, h.trailers.Lookup(r.Context(), item))
}
