package config

import (
	"net"
	"strconv"
	"time"
)

// Settings is the persisted configuration of the service.
type Settings struct {
	Server    ServerSettings    `json:"server"`
	TMDB      TMDBSettings      `json:"tmdb"`
	Homepage  HomepageSettings  `json:"homepage"`
	Sessions  SessionSettings   `json:"sessions"`
	Logging   LoggingSettings   `json:"logging"`
	RateLimit RateLimitSettings `json:"rateLimit"`
}

type ServerSettings struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	ReadTimeoutSeconds  int    `json:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `json:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `json:"idleTimeoutSeconds"`

	// AllowedOrigins are accepted for CORS on top of local and private origins.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
	// AdminToken guards the admin endpoints; empty leaves them open.
	AdminToken string `json:"adminToken,omitempty"`
}

type TMDBSettings struct {
	APIKey                string  `json:"apiKey"`
	BaseURL               string  `json:"baseUrl"`
	ImageBaseURL          string  `json:"imageBaseUrl"`
	Language              string  `json:"language"`
	RequestsPerSecond     float64 `json:"requestsPerSecond"`
	Burst                 int     `json:"burst"`
	RequestTimeoutSeconds int     `json:"requestTimeoutSeconds"` // 0 disables the client timeout
}

// HomepageSettings controls how rows and the hero are built.
type HomepageSettings struct {
	VisibleCount       int    `json:"visibleCount"`
	MaxRowItems        int    `json:"maxRowItems"`
	ProbeLimit         int    `json:"probeLimit"`
	HeroCandidates     int    `json:"heroCandidates"`
	ProbeConcurrency   int    `json:"probeConcurrency"`
	SectionConcurrency int    `json:"sectionConcurrency"`
	RefreshSchedule    string `json:"refreshSchedule"` // cron spec, empty disables
}

type SessionSettings struct {
	IdleTimeoutMinutes int `json:"idleTimeoutMinutes"`
	MaxVisitors        int `json:"maxVisitors"`
}

type LoggingSettings struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

type RateLimitSettings struct {
	PerSecond float64 `json:"perSecond"`
	Burst     int     `json:"burst"`
}

const (
	DefaultVisibleCount = 6
	DefaultMaxRowItems  = 20
	DefaultProbeLimit   = 30
	DefaultHeroCount    = 10

	// rowHeadroom is the minimum number of items a row keeps beyond one page.
	rowHeadroom = 2
)

// DefaultSettings returns the settings used when no file exists yet.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
			IdleTimeoutSeconds:  60,
		},
		TMDB: TMDBSettings{
			BaseURL:               "https://api.themoviedb.org/3",
			ImageBaseURL:          "https://image.tmdb.org/t/p/original",
			Language:              "en-US",
			RequestsPerSecond:     40,
			Burst:                 20,
			RequestTimeoutSeconds: 15,
		},
		Homepage: HomepageSettings{
			VisibleCount:       DefaultVisibleCount,
			MaxRowItems:        DefaultMaxRowItems,
			ProbeLimit:         DefaultProbeLimit,
			HeroCandidates:     DefaultHeroCount,
			ProbeConcurrency:   10,
			SectionConcurrency: 4,
			RefreshSchedule:    "@every 30m",
		},
		Sessions: SessionSettings{IdleTimeoutMinutes: 120, MaxVisitors: 10000},
		Logging: LoggingSettings{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		RateLimit: RateLimitSettings{PerSecond: 20, Burst: 40},
	}
}

// Validate fills zero values from the defaults and clamps values that would
// break row construction.
func (s *Settings) Validate() {
	def := DefaultSettings()
	if s.Server.Port <= 0 {
		s.Server.Port = def.Server.Port
	}
	if s.TMDB.BaseURL == "" {
		s.TMDB.BaseURL = def.TMDB.BaseURL
	}
	if s.TMDB.ImageBaseURL == "" {
		s.TMDB.ImageBaseURL = def.TMDB.ImageBaseURL
	}
	if s.TMDB.RequestsPerSecond <= 0 {
		s.TMDB.RequestsPerSecond = def.TMDB.RequestsPerSecond
	}
	if s.TMDB.Burst <= 0 {
		s.TMDB.Burst = def.TMDB.Burst
	}
	if s.TMDB.RequestTimeoutSeconds < 0 {
		s.TMDB.RequestTimeoutSeconds = 0
	}

	h := &s.Homepage
	if h.VisibleCount <= 0 {
		h.VisibleCount = DefaultVisibleCount
	}
	if h.MaxRowItems < h.VisibleCount+rowHeadroom {
		h.MaxRowItems = h.VisibleCount + rowHeadroom
	}
	if h.ProbeLimit <= 0 || h.ProbeLimit > DefaultProbeLimit {
		h.ProbeLimit = DefaultProbeLimit
	}
	if h.HeroCandidates <= 0 {
		h.HeroCandidates = DefaultHeroCount
	}
	if h.ProbeConcurrency <= 0 {
		h.ProbeConcurrency = def.Homepage.ProbeConcurrency
	}
	if h.SectionConcurrency <= 0 {
		h.SectionConcurrency = 1
	}

	if s.Sessions.IdleTimeoutMinutes <= 0 {
		s.Sessions.IdleTimeoutMinutes = def.Sessions.IdleTimeoutMinutes
	}
	if s.Sessions.MaxVisitors <= 0 {
		s.Sessions.MaxVisitors = def.Sessions.MaxVisitors
	}
	if s.RateLimit.PerSecond <= 0 {
		s.RateLimit.PerSecond = def.RateLimit.PerSecond
	}
	if s.RateLimit.Burst <= 0 {
		s.RateLimit.Burst = def.RateLimit.Burst
	}
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RequestTimeout returns the outbound HTTP timeout.
func (t TMDBSettings) RequestTimeout() time.Duration {
	return time.Duration(t.RequestTimeoutSeconds) * time.Second
}

// Timeouts returns the read, write and idle timeouts of the HTTP server.
func (s ServerSettings) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second,
		time.Duration(s.WriteTimeoutSeconds) * time.Second,
		time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// IdleTimeout returns how long an unused browsing session is kept.
func (s SessionSettings) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}
