package sws

import (
	"net/http"

	"github.com/go-pkgz/rest"
)

// HeaderAuthenticated set on responses of authenticated requests
const HeaderAuthenticated = "x-sws-authenticated"

// Completion tells who owns finishing the response
type Completion int

// enum of completions
const (
	Completed Completion = iota // dispatch layer writes the result
	Delegated                   // handler already took over the response (stream, logout)
)

// Result returned by route handlers
type Result struct {
	Completion  Completion
	Status      int
	ContentType string
	Body        []byte
	JSON        any
	Location    string
}

// Text makes completed result with the body as is
func Text(status int, contentType string, body []byte) Result {
	return Result{Completion: Completed, Status: status, ContentType: contentType, Body: body}
}

// JSON makes completed result rendered as json with status 200
func JSON(v any) Result {
	return Result{Completion: Completed, Status: http.StatusOK, JSON: v}
}

// Redirect makes completed redirect result
func Redirect(location string) Result {
	return Result{Completion: Completed, Status: http.StatusFound, Location: location}
}

// Delegate makes result for handlers owning the response
func Delegate() Result {
	return Result{Completion: Delegated}
}

// finalize writes completed result. Delegated results and already committed responses left alone.
func (p *Plugin) finalize(w *Response, r *http.Request, rc *RequestContext, res Result) {
	if res.Completion == Delegated {
		return
	}
	if w.Committed() {
		p.logger().Logf("[WARN] response for %s already sent, result dropped", r.URL.Path)
		return
	}

	if rc.Authenticated {
		w.Header().Set(HeaderAuthenticated, "true")
	}

	switch {
	case res.Location != "":
		http.Redirect(w, r, res.Location, res.Status)
	case res.JSON != nil:
		rest.RenderJSON(w, res.JSON)
	default:
		if res.ContentType != "" {
			w.Header().Set("Content-Type", res.ContentType)
		}
		w.WriteHeader(res.Status)
		if _, err := w.Write(res.Body); err != nil {
			p.logger().Logf("[DEBUG] failed to write response for %s, %v", r.URL.Path, err)
		}
	}
}
