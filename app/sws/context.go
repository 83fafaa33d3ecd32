package sws

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxRequest = contextKey("sws-request")

// RequestContext is a per-request side channel attached once by the tagger,
// before any routing decision. Owned by the request for its whole lifetime.
type RequestContext struct {
	Query         Query // parsed query string
	Track         bool  // report request to the stats processor
	Authenticated bool  // set from the authorization gate outcome
}

// FromContext returns RequestContext attached to the request's context
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(ctxRequest).(*RequestContext)
	return rc, ok
}

// tag attaches RequestContext to the request if not attached yet. It never fails the request,
// on a broken query the context is still attached with whatever parsed.
func (p *Plugin) tag(r *http.Request) (req *http.Request, rc *RequestContext) {
	if rc, ok := FromContext(r.Context()); ok {
		return r, rc
	}

	rc = &RequestContext{Track: true, Query: Query{}}
	defer func() {
		if rec := recover(); rec != nil {
			p.logger().Logf("[WARN] failed to tag %s, %v", r.URL.Path, rec)
			req = r.WithContext(context.WithValue(r.Context(), ctxRequest, rc))
		}
	}()

	q, err := ParseQuery(r.URL.RawQuery)
	if err != nil {
		p.logger().Logf("[DEBUG] partial query for %s, %v", r.URL.Path, err)
	}
	rc.Query = q
	if strings.HasPrefix(r.URL.Path, p.Settings.URIPath) {
		rc.Track = false // own traffic never counted
	}
	return r.WithContext(context.WithValue(r.Context(), ctxRequest, rc)), rc
}
