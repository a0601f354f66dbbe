package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"marquee/api"
	"marquee/internal/metrics"
	"marquee/models"
	"marquee/services/rows"
)

// RowsHandler moves a visitor's row windows.
type RowsHandler struct {
	homepage homepageProvider
	rows     *rows.Store
}

func NewRowsHandler(homepage homepageProvider, rowStore *rows.Store) *RowsHandler {
	return &RowsHandler{homepage: homepage, rows: rowStore}
}

func (h *RowsHandler) navigate(r *http.Request) (models.RowWindow, int, error) {
	vars := mux.Vars(r)
	dir, err := rows.ParseDirection(vars["direction"])
	if err != nil {
		return models.RowWindow{}, http.StatusBadRequest, err
	}

	window, err := h.rows.Navigate(api.VisitorID(r), h.homepage.Current(), vars["section"], dir)
	switch {
	case errors.Is(err, rows.ErrNoHomepage):
		return window, http.StatusServiceUnavailable, err
	case errors.Is(err, rows.ErrSectionNotFound):
		return window, http.StatusNotFound, err
	case err != nil:
		return window, http.StatusInternalServerError, err
	}
	metrics.RecordRowNavigation(string(dir))
	return window, http.StatusOK, nil
}

// Navigate serves POST /api/rows/{section}/{direction}.
func (h *RowsHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	window, status, err := h.navigate(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

// NavigateForm serves POST /rows/{section}/{direction} from the plain HTML
// page and redirects back to the row.
func (h *RowsHandler) NavigateForm(w http.ResponseWriter, r *http.Request) {
	if _, status, err := h.navigate(r); err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	target := url.URL{Path: "/", Fragment: "row-" + mux.Vars(r)["section"]}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}
