package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/api"
)

// Routes groups the handlers mounted on the router.
type Routes struct {
	Home     *HomeHandler
	Rows     *RowsHandler
	Details  *DetailsBundleHandler
	Trailers *TrailersHandler
	Hero     *HeroHandler
	Admin    *AdminHandler
	Version  *VersionHandler
	Static   *StaticHandler

	RateLimiter *api.IPRateLimiter
	AdminToken  string
}

// Register mounts every route on r. Page and API routes get a visitor ID and
// the per-IP rate limit; /metrics, /version and /static do not.
func (rt Routes) Register(r *mux.Router) {
	r.Use(api.RequestLogger())

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/version", rt.Version.GetVersion).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(rt.Static).Methods(http.MethodGet, http.MethodHead)

	pages := r.NewRoute().Subrouter()
	pages.Use(api.VisitorMiddleware())
	if rt.RateLimiter != nil {
		pages.Use(api.RateLimitMiddleware(rt.RateLimiter))
	}

	pages.HandleFunc("/", rt.Home.Page).Methods(http.MethodGet)
	pages.HandleFunc("/rows/{section}/{direction}", rt.Rows.NavigateForm).Methods(http.MethodPost)

	apiRouter := pages.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/home", rt.Home.Home).Methods(http.MethodGet)
	apiRouter.HandleFunc("/rows/{section}/{direction}", rt.Rows.Navigate).Methods(http.MethodPost)
	apiRouter.HandleFunc("/titles/{kind}/{id:[0-9]+}", rt.Details.GetTitle).Methods(http.MethodGet)
	apiRouter.HandleFunc("/trailers/{kind}/{id:[0-9]+}", rt.Trailers.GetTrailer).Methods(http.MethodGet)
	apiRouter.HandleFunc("/hero/player", rt.Hero.PlayerEvent).Methods(http.MethodPost)
	apiRouter.HandleFunc("/hero/unmute", rt.Hero.Unmute).Methods(http.MethodPost)

	admin := apiRouter.PathPrefix("/admin").Subrouter()
	admin.Use(api.AdminTokenMiddleware(rt.AdminToken))
	admin.HandleFunc("/refresh", rt.Admin.Refresh).Methods(http.MethodPost)
	admin.HandleFunc("/tasks", rt.Admin.Tasks).Methods(http.MethodGet)
}
