// Package player tracks the state of each visitor's hero video element as
// reported by the browser, and answers unmute requests.
package player

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

var (
	// ErrNotReady means the embedded player has not exposed its control API.
	ErrNotReady = errors.New("hero player not ready")
	// ErrUnknownEvent is returned for events other than ready, error or playing.
	ErrUnknownEvent = errors.New("unknown player event")
)

// RefreshMessage is shown when the player never becomes controllable.
const RefreshMessage = "Please refresh the page to enable sound on the hero video"

const (
	defaultUnmuteRetries = 3
	defaultUnmuteDelay   = 500 * time.Millisecond
)

// State of the hero video element.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StatePlaying State = "playing"
)

// Event is reported by the browser when the embedded player changes.
type Event string

const (
	EventReady   Event = "ready"
	EventError   Event = "error"
	EventPlaying Event = "playing"
)

// ParseEvent validates an event name.
func ParseEvent(value string) (Event, error) {
	switch ev := Event(strings.ToLower(strings.TrimSpace(value))); ev {
	case EventReady, EventError, EventPlaying:
		return ev, nil
	default:
		return "", ErrUnknownEvent
	}
}

// Status is a point-in-time view of a HeroPlayer.
type Status struct {
	State State  `json:"state"`
	Src   string `json:"src,omitempty"`
	Ready bool   `json:"ready"`
	Muted bool   `json:"muted"`
}

// UnmuteResult tells the page what to do after an unmute click.
type UnmuteResult struct {
	Unmuted     bool   `json:"unmuted"`
	Instruction string `json:"instruction,omitempty"`
	Message     string `json:"message,omitempty"`
}

// HeroPlayer models the banner's video element: idle until a source is
// set, loading until the player reports playback, then playing.
type HeroPlayer struct {
	mu    sync.Mutex
	state State
	src   string
	ready bool
	muted bool

	retries uint
	delay   time.Duration
}

// NewHeroPlayer returns an idle player.
func NewHeroPlayer() *HeroPlayer {
	return &HeroPlayer{
		state:   StateIdle,
		muted:   true,
		retries: defaultUnmuteRetries,
		delay:   defaultUnmuteDelay,
	}
}

// Load points the element at embedURL. An empty URL leaves the banner
// image-only and the player idle. Loading the current source is a no-op.
func (p *HeroPlayer) Load(embedURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if embedURL == p.src && p.state != StateIdle {
		return
	}
	p.resetLocked(embedURL)
}

// Reload starts over with a fresh element for embedURL, even when the source
// is unchanged. Every rendered page ships a new iframe, which must report
// ready again before it can be unmuted.
func (p *HeroPlayer) Reload(embedURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked(embedURL)
}

func (p *HeroPlayer) resetLocked(embedURL string) {
	p.src = embedURL
	p.ready = false
	p.muted = true
	if embedURL == "" {
		p.state = StateIdle
		return
	}
	p.state = StateLoading
}

// HandleEvent applies a browser-reported event.
func (p *HeroPlayer) HandleEvent(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev {
	case EventReady:
		p.ready = true
	case EventError:
		p.ready = false
	case EventPlaying:
		if p.state == StateLoading {
			p.state = StatePlaying
		}
	default:
		return ErrUnknownEvent
	}
	return nil
}

// Status returns the current state.
func (p *HeroPlayer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{State: p.state, Src: p.src, Ready: p.ready, Muted: p.muted}
}

// Unmute waits for the player's control API, retrying a bounded number of
// times. It never fails: when the player stays unavailable the result carries
// a message for the visitor instead.
func (p *HeroPlayer) Unmute(ctx context.Context) UnmuteResult {
	p.mu.Lock()
	retries, delay, idle := p.retries, p.delay, p.state == StateIdle
	p.mu.Unlock()

	if idle {
		return UnmuteResult{Message: RefreshMessage}
	}

	err := retry.Do(
		func() error {
			p.mu.Lock()
			defer p.mu.Unlock()
			if !p.ready {
				return ErrNotReady
			}
			p.muted = false
			return nil
		},
		retry.Attempts(retries+1),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[player] unmute gave up after %d retries: %v", retries, err)
		return UnmuteResult{Message: RefreshMessage}
	}
	return UnmuteResult{Unmuted: true, Instruction: "unmute-and-play"}
}
