package handlers

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"marquee/api"
	"marquee/models"
	"marquee/services/details"
	"marquee/services/player"
	"marquee/services/rows"
)

const (
	heroOverviewLimit = 200
	lazyBuildTimeout  = 2 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

type homepageProvider interface {
	Current() *models.Homepage
	Build(ctx context.Context) (*models.Homepage, error)
}

type detailsService interface {
	GetMode(ctx context.Context, kind models.MediaKind, id int64, mode details.Mode) *models.TitleDetails
}

// HomeHandler renders the front page and its JSON equivalent.
type HomeHandler struct {
	homepage homepageProvider
	rows     *rows.Store
	players  *player.Registry
	details  detailsService
	tmpl     *template.Template
	builds   singleflight.Group
}

// HomeResponse is returned by GET /api/home.
type HomeResponse struct {
	Hero    *models.Featured   `json:"hero,omitempty"`
	Player  player.Status      `json:"player"`
	Rows    []models.RowWindow `json:"rows"`
	BuiltAt time.Time          `json:"builtAt"`
}

type modalView struct {
	Details     *models.TitleDetails
	ShowVideo   bool
	ShowDetails bool
}

type pageView struct {
	Hero           *models.Featured
	OverviewLimit  int
	Player         player.Status
	Rows           []models.RowWindow
	Modal          *modalView
	Unavailable    bool
	RefreshMessage string
}

// NewHomeHandler parses the embedded page templates. imageURL turns backdrop
// paths into absolute image URLs.
func NewHomeHandler(homepage homepageProvider, rowStore *rows.Store, players *player.Registry, detailsSvc detailsService, imageURL func(string) string) (*HomeHandler, error) {
	if imageURL == nil {
		imageURL = func(path string) string { return path }
	}
	funcs := template.FuncMap{
		"image":    imageURL,
		"titleRef": titleRef,
		"join":     strings.Join,
		"truncate": truncate,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &HomeHandler{
		homepage: homepage,
		rows:     rowStore,
		players:  players,
		details:  detailsSvc,
		tmpl:     tmpl,
	}, nil
}

// current returns the published homepage, building it on first use.
// Concurrent requests share a single build, which outlives any one caller.
func (h *HomeHandler) current(ctx context.Context) *models.Homepage {
	if page := h.homepage.Current(); page != nil {
		return page
	}
	val, err, shared := h.builds.Do("homepage", func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lazyBuildTimeout)
		defer cancel()
		return h.homepage.Build(buildCtx)
	})
	if err != nil {
		log.Printf("[home] homepage unavailable (shared=%t): %v", shared, err)
		return nil
	}
	return val.(*models.Homepage)
}

// heroPlayer returns the visitor's player state. A rendered page carries a
// new iframe, so fresh resets readiness even when the source is unchanged.
func (h *HomeHandler) heroPlayer(visitorID string, page *models.Homepage, fresh bool) player.Status {
	p := h.players.For(visitorID)
	embed := ""
	if page != nil && page.Hero != nil {
		embed = page.Hero.EmbedURL
	}
	if fresh {
		p.Reload(embed)
	} else {
		p.Load(embed)
	}
	return p.Status()
}

// Page serves GET /. ?title=movie-123&mode=both opens the details modal.
func (h *HomeHandler) Page(w http.ResponseWriter, r *http.Request) {
	visitorID := api.VisitorID(r)
	page := h.current(r.Context())

	view := pageView{
		Player:         h.heroPlayer(visitorID, page, true),
		OverviewLimit:  heroOverviewLimit,
		Unavailable:    page == nil,
		RefreshMessage: player.RefreshMessage,
	}
	if page != nil {
		view.Hero = page.Hero
		view.Rows = h.rows.Windows(visitorID, page)
	}

	if ref := strings.TrimSpace(r.URL.Query().Get("title")); ref != "" {
		if kind, id, ok := parseTitleRef(ref); ok {
			mode := details.ParseMode(r.URL.Query().Get("mode"))
			view.Modal = &modalView{
				Details:     h.details.GetMode(r.Context(), kind, id, mode),
				ShowVideo:   mode != details.ModeDetails,
				ShowDetails: mode != details.ModeVideo,
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "home.html", view); err != nil {
		log.Printf("[home] render failed: %v", err)
	}
}

// Home serves GET /api/home.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	visitorID := api.VisitorID(r)
	page := h.current(r.Context())
	if page == nil {
		jsonError(w, "homepage not available yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, HomeResponse{
		Hero:    page.Hero,
		Player:  h.heroPlayer(visitorID, page, false),
		Rows:    h.rows.Windows(visitorID, page),
		BuiltAt: page.BuiltAt,
	})
}
