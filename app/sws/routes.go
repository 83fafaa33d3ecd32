package sws

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/didip/tollbooth/v7"
	"github.com/go-pkgz/rest"

	"github.com/umputun/sws/app/settings"
)

// Kind of the route handler
type Kind string

// enum of route kinds
const (
	KindStats    Kind = "stats"
	KindMetrics  Kind = "metrics"
	KindLogout   Kind = "logout"
	KindRedirect Kind = "redirect"
	KindUI       Kind = "ui-markup"
	KindDist     Kind = "dist-asset"
	KindUX       Kind = "ux-asset"
)

// MetricsContentType is the content type of the text exposition format
const MetricsContentType = "text/plain; version=0.0.4; charset=utf-8"

// Route describes a single endpoint, built once from settings
type Route struct {
	Method string
	Path   string
	Gated  bool // passes through the authorization gate
	Kind   Kind
}

// Pattern returns http.ServeMux pattern for the route, asset routes match the whole subtree
func (rt Route) Pattern() string {
	if rt.Kind == KindDist || rt.Kind == KindUX {
		return rt.Method + " " + rt.Path + "/{file...}"
	}
	return rt.Method + " " + rt.Path
}

// Routes returns route table for settings
func Routes(s settings.Settings) []Route {
	return []Route{
		{Method: http.MethodGet, Path: s.PathStats, Gated: true, Kind: KindStats},
		{Method: http.MethodGet, Path: s.PathMetrics, Gated: true, Kind: KindMetrics},
		{Method: http.MethodGet, Path: s.PathLogout, Kind: KindLogout},
		{Method: http.MethodGet, Path: s.URIPath, Kind: KindRedirect},
		{Method: http.MethodGet, Path: s.PathUI, Kind: KindUI},
		{Method: http.MethodGet, Path: s.PathDist, Kind: KindDist},
		{Method: http.MethodGet, Path: s.PathUX, Gated: true, Kind: KindUX},
	}
}

// Router is anything routes can be registered on, i.e. *http.ServeMux
type Router interface {
	Handle(pattern string, handler http.Handler)
}

type handlerFunc func(w *Response, r *http.Request, rc *RequestContext) (Result, error)

// Register adds all routes to the router
func (p *Plugin) Register(router Router) error {
	if err := p.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	routes := Routes(p.Settings)
	seen := map[string]Kind{}
	for _, rt := range routes {
		if k, ok := seen[rt.Pattern()]; ok {
			return fmt.Errorf("route %s for %s conflicts with %s", rt.Pattern(), rt.Kind, k)
		}
		seen[rt.Pattern()] = rt.Kind
	}

	wrap := p.routeOptions()
	for _, rt := range routes {
		router.Handle(rt.Pattern(), wrap(p.serve(rt, p.handler(rt.Kind))))
		p.logger().Logf("[DEBUG] route %s, kind %s, gated %v", rt.Pattern(), rt.Kind, rt.Gated)
	}
	return nil
}

func (p *Plugin) handler(k Kind) handlerFunc {
	switch k {
	case KindStats:
		return p.statsCtrl
	case KindMetrics:
		return p.metricsCtrl
	case KindLogout:
		return p.logoutCtrl
	case KindRedirect:
		return func(_ *Response, _ *http.Request, _ *RequestContext) (Result, error) {
			return Redirect(p.Settings.PathUI), nil
		}
	case KindUI:
		return func(_ *Response, _ *http.Request, _ *RequestContext) (Result, error) {
			return Text(http.StatusOK, "text/html; charset=utf-8", p.UI), nil
		}
	case KindDist:
		return func(w *Response, r *http.Request, _ *RequestContext) (Result, error) {
			return p.distAssets().Serve(w, r, r.PathValue("file"))
		}
	case KindUX:
		return func(w *Response, r *http.Request, rc *RequestContext) (Result, error) {
			if rc.Authenticated {
				w.Header().Set(HeaderAuthenticated, "true")
			}
			return p.uxAssets().Serve(w, r, r.PathValue("file"))
		}
	}
	return func(_ *Response, _ *http.Request, _ *RequestContext) (Result, error) {
		return Result{}, &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("unknown route kind %q", k)}
	}
}

// serve makes http.Handler for the route, runs the gate for gated routes and finalizes completed results
func (p *Plugin) serve(rt Route, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, rc := p.tag(r)
		resp := newResponse(w, r, rc)

		if rt.Gated {
			out, err := p.authorize(resp, r)
			if err != nil {
				p.fail(resp, r, err)
				return
			}
			if out.Terminated {
				return
			}
			rc.Authenticated = out.Authenticated
		}

		res, err := fn(resp, r, rc)
		if err != nil {
			p.fail(resp, r, err)
			return
		}
		p.finalize(resp, r, rc, res)
	})
}

// fail reports handler error unless the response is already sent
func (p *Plugin) fail(w *Response, r *http.Request, err error) {
	if w.Committed() {
		p.logger().Logf("[WARN] %s failed after response sent, %v", r.URL.Path, err)
		return
	}
	code, msg := http.StatusInternalServerError, "internal error"
	var se *StatusError
	if errors.As(err, &se) {
		code, msg = se.Code, strings.ToLower(http.StatusText(se.Code))
	}
	rest.SendErrorJSON(w, r, p.logger(), code, err, msg)
}

// routeOptions makes middleware applying per-route options: extra headers and rate limit
func (p *Plugin) routeOptions() func(http.Handler) http.Handler {
	opts := p.Settings.Route
	return func(next http.Handler) http.Handler {
		h := next
		if opts.Throttle > 0 {
			lmt := tollbooth.NewLimiter(opts.Throttle, nil).
				SetBurst(int(opts.Throttle) + 1).
				SetStatusCode(http.StatusTooManyRequests).
				SetMessage("request rate limit exceeded").
				SetMessageContentType("text/plain; charset=utf-8")
			h = tollbooth.LimitHandler(lmt, h)
		}
		if len(opts.Headers) == 0 {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, hdr := range opts.Headers {
				k, v, ok := strings.Cut(hdr, ":")
				if !ok {
					continue
				}
				w.Header().Set(strings.TrimSpace(k), strings.TrimSpace(v))
			}
			h.ServeHTTP(w, r)
		})
	}
}

// statsCtrl - GET {pathStats}, returns stats snapshot shaped by query
func (p *Plugin) statsCtrl(_ *Response, _ *http.Request, rc *RequestContext) (Result, error) {
	if p.Processor == nil {
		return Result{}, errors.New("no stats processor")
	}
	stats, err := p.Processor.Stats(rc.Query)
	if err != nil {
		return Result{}, fmt.Errorf("can't get stats: %w", err)
	}
	return JSON(stats), nil
}

// metricsCtrl - GET {pathMetrics}, returns metrics in text exposition format
func (p *Plugin) metricsCtrl(_ *Response, _ *http.Request, _ *RequestContext) (Result, error) {
	if p.Metrics == nil {
		return Result{}, errors.New("no metrics source")
	}
	body, err := p.Metrics.Metrics()
	if err != nil {
		return Result{}, fmt.Errorf("can't get metrics: %w", err)
	}
	return Text(http.StatusOK, MetricsContentType, body), nil
}

// logoutCtrl - GET {pathLogout}, authenticator completes the response
func (p *Plugin) logoutCtrl(w *Response, r *http.Request, _ *RequestContext) (Result, error) {
	if p.Auth == nil {
		return Text(http.StatusOK, "text/plain; charset=utf-8", []byte("OK")), nil
	}
	if err := p.Auth.ProcessLogout(w, r); err != nil {
		return Result{}, fmt.Errorf("logout: %w", err)
	}
	return Delegate(), nil
}
