package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tbl := []struct {
		uriPath string
		base    string
	}{
		{"/swagger-stats", "/swagger-stats"},
		{"/swagger-stats/", "/swagger-stats"},
		{"stats", "/stats"},
		{"", DefaultURIPath},
		{"/", DefaultURIPath},
	}

	for _, tt := range tbl {
		t.Run(tt.uriPath, func(t *testing.T) {
			s := New(tt.uriPath)
			assert.Equal(t, tt.base, s.URIPath)
			assert.Equal(t, tt.base+"/stats", s.PathStats)
			assert.Equal(t, tt.base+"/metrics", s.PathMetrics)
			assert.Equal(t, tt.base+"/logout", s.PathLogout)
			assert.Equal(t, tt.base+"/ui", s.PathUI)
			assert.Equal(t, tt.base+"/dist", s.PathDist)
			assert.Equal(t, tt.base+"/ux", s.PathUX)
			assert.Equal(t, 15*time.Minute, s.Auth.MaxAge)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	s, err := Load("testdata/settings.yml", "/ignored")
	require.NoError(t, err)
	assert.Equal(t, "/monitor", s.URIPath)
	assert.Equal(t, "/monitor/dashboard", s.PathUI)
	assert.Equal(t, "/monitor/stats", s.PathStats)
	assert.Equal(t, "/srv/dist", s.DistRoot)
	assert.True(t, s.Auth.Enabled)
	assert.Len(t, s.Auth.Users, 1)
	assert.Equal(t, 5*time.Minute, s.Auth.MaxAge)
	assert.Equal(t, []string{"X-Frame-Options:DENY"}, s.Route.Headers)
	assert.InDelta(t, 10.0, s.Route.Throttle, 0.001)
	assert.NoError(t, s.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("testdata/not-found.yml", "/sws")
	require.Error(t, err)

	fname := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(fname, []byte("uri_path: [blah"), 0o600))
	_, err = Load(fname, "/sws")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse settings")
}

func TestLoad_KeepsBasePathFromArgs(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "s.yml")
	require.NoError(t, os.WriteFile(fname, []byte("path_metrics: /prom\n"), 0o600))
	s, err := Load(fname, "/sws")
	require.NoError(t, err)
	assert.Equal(t, "/sws", s.URIPath)
	assert.Equal(t, "/prom", s.PathMetrics)
	assert.Equal(t, "/sws/stats", s.PathStats)
}

func TestSettings_Validate(t *testing.T) {
	s := New("/sws")
	s.PathDist = "/sws/{dist}"
	assert.Error(t, s.Validate())

	s = New("/sws")
	s.PathStats = "stats"
	assert.Error(t, s.Validate())

	s = New("/sws")
	s.Auth.Enabled = true
	assert.EqualError(t, s.Validate(), "auth enabled, but no users defined")
}
