// Package settings holds named paths and options of the instrumentation middleware.
// All paths are derived from the base uri path unless set explicitly.
package settings

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultURIPath is the base path used when nothing else defined
const DefaultURIPath = "/swagger-stats"

// Settings of the middleware, resolved once at startup
type Settings struct {
	URIPath     string `yaml:"uri_path"`
	PathStats   string `yaml:"path_stats"`
	PathMetrics string `yaml:"path_metrics"`
	PathLogout  string `yaml:"path_logout"`
	PathUI      string `yaml:"path_ui"`
	PathDist    string `yaml:"path_dist"`
	PathUX      string `yaml:"path_ux"`

	DistRoot string `yaml:"dist_root"` // local directory with dist assets
	UXRoot   string `yaml:"ux_root"`   // local directory with ux assets

	Auth  Auth         `yaml:"auth"`
	Route RouteOptions `yaml:"route"`
}

// Auth defines authentication options
type Auth struct {
	Enabled bool          `yaml:"enabled"`
	Users   []string      `yaml:"users"` // user:bcrypt-hash pairs
	MaxAge  time.Duration `yaml:"max_age"`
	Redis   string        `yaml:"redis"` // redis address for shared sessions, in-memory if empty
}

// RouteOptions applied to every route registered by the middleware
type RouteOptions struct {
	Headers  []string `yaml:"headers"`  // extra response headers, key:value
	Throttle float64  `yaml:"throttle"` // max requests per second per client, 0 disables
}

// New makes settings with all paths derived from uriPath
func New(uriPath string) Settings {
	res := Settings{URIPath: uriPath, Auth: Auth{MaxAge: 15 * time.Minute}}
	res.normalize()
	return res
}

// Load reads yaml settings file and overlays it on top of defaults for uriPath.
// Base path from the file, if set, takes precedence.
func Load(fname, uriPath string) (Settings, error) {
	data, err := os.ReadFile(fname) //nolint gosec
	if err != nil {
		return Settings{}, fmt.Errorf("can't read settings %s: %w", fname, err)
	}
	res := Settings{URIPath: uriPath, Auth: Auth{MaxAge: 15 * time.Minute}}
	if err = yaml.Unmarshal(data, &res); err != nil {
		return Settings{}, fmt.Errorf("can't parse settings %s: %w", fname, err)
	}
	res.normalize()
	return res, nil
}

// normalize trims trailing slashes and fills empty paths from the base one
func (s *Settings) normalize() {
	s.URIPath = strings.TrimRight(s.URIPath, "/")
	if s.URIPath == "" {
		s.URIPath = DefaultURIPath
	}
	if !strings.HasPrefix(s.URIPath, "/") {
		s.URIPath = "/" + s.URIPath
	}

	fill := func(p *string, suffix string) {
		*p = strings.TrimRight(*p, "/")
		if *p == "" {
			*p = s.URIPath + suffix
		}
	}
	fill(&s.PathStats, "/stats")
	fill(&s.PathMetrics, "/metrics")
	fill(&s.PathLogout, "/logout")
	fill(&s.PathUI, "/ui")
	fill(&s.PathDist, "/dist")
	fill(&s.PathUX, "/ux")

	if s.Auth.MaxAge <= 0 {
		s.Auth.MaxAge = 15 * time.Minute
	}
}

// Validate checks paths are usable as route patterns
func (s Settings) Validate() error {
	for name, p := range map[string]string{"stats": s.PathStats, "metrics": s.PathMetrics, "logout": s.PathLogout,
		"ui": s.PathUI, "dist": s.PathDist, "ux": s.PathUX} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path %s %q should start with /", name, p)
		}
		if strings.ContainsAny(p, "{} ") {
			return fmt.Errorf("path %s %q has invalid characters", name, p)
		}
	}
	if s.Auth.Enabled && len(s.Auth.Users) == 0 {
		return fmt.Errorf("auth enabled, but no users defined")
	}
	return nil
}
