package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"marquee/services/scheduler"
)

type taskRunner interface {
	RunNow(name string) error
	Status() []scheduler.TaskStatus
}

// AdminHandler exposes manual homepage refreshes and task status.
type AdminHandler struct {
	tasks    taskRunner
	homepage homepageProvider
	task     string
}

// NewAdminHandler triggers task on refresh requests.
func NewAdminHandler(tasks taskRunner, homepage homepageProvider, task string) *AdminHandler {
	return &AdminHandler{tasks: tasks, homepage: homepage, task: task}
}

type refreshResponse struct {
	Sections int       `json:"sections"`
	HasHero  bool      `json:"hasHero"`
	BuiltAt  time.Time `json:"builtAt"`
}

// Refresh serves POST /api/admin/refresh.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.tasks.RunNow(h.task)
	switch {
	case errors.Is(err, scheduler.ErrTaskRunning):
		jsonError(w, "refresh already in progress", http.StatusConflict)
		return
	case err != nil:
		log.Printf("[admin] refresh failed: %v", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	page := h.homepage.Current()
	if page == nil {
		jsonError(w, "homepage not available", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Sections: len(page.Sections),
		HasHero:  page.Hero != nil,
		BuiltAt:  page.BuiltAt,
	})
}

// Tasks serves GET /api/admin/tasks.
func (h *AdminHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.Status())
}
