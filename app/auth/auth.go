// Package auth implements authentication engine for gated endpoints. Basic auth credentials checked
// against bcrypt hashed users, successful stats requests get a session cookie used by the following ones.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/umputun/sws/app/settings"
)

// SessionCookie is the name of session cookie
const SessionCookie = "sws-session-id"

// Engine authenticates requests to gated endpoints
type Engine struct {
	Enabled   bool
	Users     []string // user:bcrypt-hash pairs
	MaxAge    time.Duration
	BasePath  string // cookie path
	StatsPath string // sessions issued for stats requests only
	Store     SessionStore
	L         log.L
}

// New makes engine from settings, in-memory session store used if store is nil
func New(s settings.Settings, store SessionStore) *Engine {
	if store == nil {
		store = NewMemoryStore(10000)
	}
	return &Engine{
		Enabled:   s.Auth.Enabled,
		Users:     s.Auth.Users,
		MaxAge:    s.Auth.MaxAge,
		BasePath:  s.URIPath,
		StatsPath: s.PathStats,
		Store:     store,
	}
}

// ProcessAuth checks session cookie first and basic auth credentials next. Denied requests answered with 403.
// Returns error only if session store failed.
func (e *Engine) ProcessAuth(w http.ResponseWriter, r *http.Request) (bool, error) {
	if !e.Enabled {
		return false, nil
	}

	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		ok, err := e.Store.Touch(r.Context(), c.Value, e.MaxAge)
		if err != nil {
			return false, fmt.Errorf("can't check session: %w", err)
		}
		if ok {
			return true, nil
		}
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		e.deny(w, "Authentication required")
		return false, nil
	}
	if !validateBasicAuthCredentials(username, password, e.Users) {
		e.logger().Logf("[INFO] auth rejected for user %q on %s", username, r.URL.Path)
		e.deny(w, "Invalid credentials")
		return false, nil
	}

	if strings.HasPrefix(r.URL.Path, e.StatsPath) {
		sid := uuid.NewString()
		if err := e.Store.Create(r.Context(), sid, e.MaxAge); err != nil {
			return false, fmt.Errorf("can't create session: %w", err)
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: e.BasePath,
			MaxAge: int(e.MaxAge.Seconds()), HttpOnly: true, SameSite: http.SameSiteLaxMode})
	}
	return true, nil
}

// ProcessLogout drops the session and expires the cookie, completes response with 200
func (e *Engine) ProcessLogout(w http.ResponseWriter, r *http.Request) error {
	if e.Enabled {
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			if err := e.Store.Delete(r.Context(), c.Value); err != nil {
				return fmt.Errorf("can't delete session: %w", err)
			}
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: e.BasePath, MaxAge: -1, HttpOnly: true})
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("OK"))
	return err
}

func (e *Engine) logger() log.L {
	if e.L == nil {
		return log.Default()
	}
	return e.L
}

func (e *Engine) deny(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	if _, err := w.Write([]byte(msg)); err != nil {
		e.logger().Logf("[DEBUG] failed to write auth response, %v", err)
	}
}

// validateBasicAuthCredentials checks if username:password matches any of the allowed user:hash pairs.
// Uses constant-time comparison to prevent timing attacks.
func validateBasicAuthCredentials(username, password string, allowed []string) bool {
	if username == "" {
		return false
	}
	passed := false
	usernameHash := sha256.Sum256([]byte(username))
	for _, a := range allowed {
		elems := strings.SplitN(strings.TrimSpace(a), ":", 2)
		if len(elems) != 2 || elems[0] == "" {
			continue
		}

		// hash to ensure constant time comparison not affected by username length
		expectedUsernameHash := sha256.Sum256([]byte(elems[0]))

		userMatched := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:])
		passMatchErr := bcrypt.CompareHashAndPassword([]byte(elems[1]), []byte(password))
		if userMatched == 1 && passMatchErr == nil {
			passed = true // don't stop here, check all allowed to keep the overall time consistent
		}
	}
	return passed
}
