package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TMDB_API_KEY", "TMDB_LANGUAGE", "MARQUEE_HOST", "MARQUEE_PORT", "MARQUEE_LOG_FILE", "MARQUEE_ADMIN_TOKEN"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	mgr := NewManagerWithFs(afero.NewMemMapFs(), "/data/settings.json")

	settings, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	mgr := NewManagerWithFs(fs, "/data/settings.json")

	settings := DefaultSettings()
	settings.TMDB.APIKey = "abc"
	settings.Homepage.VisibleCount = 8
	require.NoError(t, mgr.Save(settings))

	exists, err := afero.Exists(fs, "/data/settings.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file should be renamed away")

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.TMDB.APIKey)
	assert.Equal(t, 8, loaded.Homepage.VisibleCount)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/settings.json", []byte("{not json"), 0o600))

	_, err := NewManagerWithFs(fs, "/settings.json").Load()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("MARQUEE_PORT", "9191")
	t.Setenv("MARQUEE_HOST", "127.0.0.1")
	t.Setenv("MARQUEE_ADMIN_TOKEN", "s3cret")

	settings, err := NewManagerWithFs(afero.NewMemMapFs(), "/s.json").Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.TMDB.APIKey)
	assert.Equal(t, "s3cret", settings.Server.AdminToken)
	assert.Equal(t, "127.0.0.1:9191", settings.Server.Addr())
}

func TestValidateClampsRowSizes(t *testing.T) {
	tests := []struct {
		name        string
		visible     int
		maxItems    int
		probeLimit  int
		wantVisible int
		wantMax     int
		wantProbe   int
	}{
		{"zero values", 0, 0, 0, DefaultVisibleCount, DefaultVisibleCount + rowHeadroom, DefaultProbeLimit},
		{"max below one page", 8, 5, 10, 8, 10, 10},
		{"probe limit capped", 6, 20, 100, 6, 20, DefaultProbeLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{Homepage: HomepageSettings{VisibleCount: tt.visible, MaxRowItems: tt.maxItems, ProbeLimit: tt.probeLimit}}
			s.Validate()
			assert.Equal(t, tt.wantVisible, s.Homepage.VisibleCount)
			assert.Equal(t, tt.wantMax, s.Homepage.MaxRowItems)
			assert.Equal(t, tt.wantProbe, s.Homepage.ProbeLimit)
		})
	}
}

func TestEnsureDefaultsWritesOnFirstRunOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "from-env")
	fs := afero.NewMemMapFs()
	mgr := NewManagerWithFs(fs, "/data/settings.json")

	created, err := mgr.EnsureDefaults()
	require.NoError(t, err)
	assert.True(t, created)

	data, err := afero.ReadFile(fs, "/data/settings.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"maxVisitors": 10000`)
	assert.NotContains(t, string(data), "from-env")

	settings := DefaultSettings()
	settings.Homepage.VisibleCount = 9
	require.NoError(t, mgr.Save(settings))

	created, err = mgr.EnsureDefaults()
	require.NoError(t, err)
	assert.False(t, created)

	clearEnv(t)
	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Homepage.VisibleCount)
}

func TestValidateFillsSessionLimits(t *testing.T) {
	s := Settings{}
	s.Validate()
	assert.Equal(t, 120, s.Sessions.IdleTimeoutMinutes)
	assert.Equal(t, 10000, s.Sessions.MaxVisitors)
}
