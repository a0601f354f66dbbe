package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"marquee/api"
	"marquee/services/player"
)

const maxEventBodyBytes = 1 << 10

// HeroHandler relays hero player events from the page and handles unmute
// clicks.
type HeroHandler struct {
	homepage homepageProvider
	players  *player.Registry
}

func NewHeroHandler(homepage homepageProvider, players *player.Registry) *HeroHandler {
	return &HeroHandler{homepage: homepage, players: players}
}

type playerEventRequest struct {
	Event string `json:"event"`
}

func (h *HeroHandler) visitorPlayer(r *http.Request) *player.HeroPlayer {
	p := h.players.For(api.VisitorID(r))
	embed := ""
	if page := h.homepage.Current(); page != nil && page.Hero != nil {
		embed = page.Hero.EmbedURL
	}
	p.Load(embed)
	return p
}

// PlayerEvent serves POST /api/hero/player with {"event": "ready|error|playing"}.
func (h *HeroHandler) PlayerEvent(w http.ResponseWriter, r *http.Request) {
	var req playerEventRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEventBodyBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ev, err := player.ParseEvent(req.Event)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := h.visitorPlayer(r)
	if err := p.HandleEvent(ev); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev == player.EventError {
		log.Printf("[hero] player reported an error for visitor %s", api.VisitorID(r))
	}
	writeJSON(w, http.StatusOK, p.Status())
}

// Unmute serves POST /api/hero/unmute. It always answers 200; a player that
// never became controllable yields a message for the visitor.
func (h *HeroHandler) Unmute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.visitorPlayer(r).Unmute(r.Context()))
}
