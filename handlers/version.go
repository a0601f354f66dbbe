package handlers

import (
	"net/http"
	"os"
	"strings"
	"sync"
)

// Version can be set at build time with -ldflags "-X marquee/handlers.Version=...".
// When empty it is read from version.txt.
var Version string

var (
	version     string
	versionOnce sync.Once
)

type VersionHandler struct{}

type VersionResponse struct {
	Version string `json:"version"`
}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// GetVersion returns the build version (cached after first read).
func GetVersion() string {
	versionOnce.Do(func() {
		if v := strings.TrimSpace(Version); v != "" {
			version = v
			return
		}
		for _, path := range []string{"version.txt", "/app/version.txt"} {
			if data, err := os.ReadFile(path); err == nil {
				version = strings.TrimSpace(string(data))
				return
			}
		}
		version = "unknown"
	})
	return version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: GetVersion()})
}
