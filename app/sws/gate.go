package sws

import (
	"fmt"
	"net/http"
)

//go:generate moq -out authenticator_mock.go -fmt goimports . Authenticator

// Authenticator is the authentication engine.
// ProcessAuth returns true for authenticated requests; denial is signaled by writing 403 to w.
// ProcessLogout completes the response itself.
type Authenticator interface {
	ProcessAuth(w http.ResponseWriter, r *http.Request) (bool, error)
	ProcessLogout(w http.ResponseWriter, r *http.Request) error
}

// Outcome of a single gate evaluation. Terminated means the response already sent
// and nothing else should be written.
type Outcome struct {
	Authenticated bool
	Terminated    bool
}

// authorize runs the authenticator in front of a gated route.
// Error returned only for failures of the authenticator itself, denial is a normal outcome.
func (p *Plugin) authorize(w *Response, r *http.Request) (Outcome, error) {
	if p.Auth == nil {
		return Outcome{}, nil
	}

	authenticated, err := p.Auth.ProcessAuth(w, r)
	if err != nil {
		return Outcome{}, fmt.Errorf("auth for %s: %w", r.URL.Path, err)
	}

	if w.Status() == http.StatusForbidden {
		return Outcome{Terminated: true}, nil
	}
	if w.Committed() {
		// authenticator answered with something else, still can't write over it
		p.logger().Logf("[WARN] auth for %s completed response with %d", r.URL.Path, w.Status())
		return Outcome{Terminated: true}, nil
	}
	return Outcome{Authenticated: authenticated}, nil
}
