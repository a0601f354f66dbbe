package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"marquee/models"
	"marquee/services/details"
)

// DetailsBundleHandler serves everything the details modal shows in one
// response. Videos, details and credits are fetched concurrently.
type DetailsBundleHandler struct {
	details detailsService
}

func NewDetailsBundleHandler(detailsSvc detailsService) *DetailsBundleHandler {
	return &DetailsBundleHandler{details: detailsSvc}
}

// GetTitle serves GET /api/titles/{kind}/{id}?mode=both|details|video.
func (h *DetailsBundleHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := parseTitleID(vars["id"])
	if !ok {
		jsonError(w, "invalid title id", http.StatusBadRequest)
		return
	}
	kind := models.ParseMediaKind(vars["kind"])
	mode := details.ParseMode(r.URL.Query().Get("mode"))

	writeJSON(w, http.StatusOK, h.details.GetMode(r.Context(), kind, id, mode))
}
