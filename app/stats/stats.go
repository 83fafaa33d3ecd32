// Package stats implements request/response statistics aggregator. It keeps summary counters
// in memory, publishes them as prometheus metrics and returns snapshots shaped by query fields.
package stats

import (
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/umputun/sws/app/sws"
)

const unmatchedRoute = "[unmatched]"

// Config for the processor
type Config struct {
	MaxErrors int       // number of last errors kept, 100 if not set
	Buckets   []float64 // duration histogram buckets in milliseconds
}

// Processor aggregates stats for tracked requests. Safe for concurrent use.
type Processor struct {
	startTS   time.Time
	maxErrors int
	metrics   *metrics

	lock       sync.Mutex
	all        Counts
	methods    map[string]*Counts
	apidefs    map[string]map[string]*Counts // route -> method -> counts
	lastErrors []ErrorInfo
}

// Counts is a set of request/response counters
type Counts struct {
	Requests     int64   `json:"requests"`
	Responses    int64   `json:"responses"`
	Errors       int64   `json:"errors"`
	Info         int64   `json:"info"`
	Success      int64   `json:"success"`
	Redirect     int64   `json:"redirect"`
	ClientError  int64   `json:"client_error"`
	ServerError  int64   `json:"server_error"`
	TotalTime    int64   `json:"total_time"` // milliseconds
	MaxTime      int64   `json:"max_time"`
	AvgTime      float64 `json:"avg_time"`
	TotalReqSize int64   `json:"total_req_clength"`
	TotalResSize int64   `json:"total_res_clength"`
}

// ErrorInfo describes a single error response
type ErrorInfo struct {
	Time     time.Time `json:"time"`
	Method   string    `json:"method"`
	Path     string    `json:"path"`
	Route    string    `json:"route"`
	Code     int       `json:"code"`
	Duration int64     `json:"duration"`
	Remote   string    `json:"remote"`
}

// New makes processor with all metrics registered
func New(cfg Config) *Processor {
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 100
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}
	}
	return &Processor{
		startTS:   time.Now(),
		maxErrors: cfg.MaxErrors,
		metrics:   newMetrics(cfg.Buckets),
		methods:   map[string]*Counts{},
		apidefs:   map[string]map[string]*Counts{},
	}
}

// ProcessRequest counts started request
func (p *Processor) ProcessRequest(r *http.Request, _ *sws.Response) error {
	reqSize := max(r.ContentLength, 0)

	p.lock.Lock()
	p.all.Requests++
	p.all.TotalReqSize += reqSize
	mc := p.method(r.Method)
	mc.Requests++
	mc.TotalReqSize += reqSize
	p.lock.Unlock()

	p.metrics.request()
	return nil
}

// ProcessResponse counts completed response. Route is the pattern matched by the router,
// the request's route counters are updated here as the pattern is not known before dispatch.
func (p *Processor) ProcessResponse(w *sws.Response) error {
	r := w.Request()
	code := w.Status()
	elapsed := time.Since(w.Started())
	ms := elapsed.Milliseconds()
	route := routeOf(r)

	p.lock.Lock()
	p.all.response(code, ms, w.Written())
	p.method(r.Method).response(code, ms, w.Written())
	rc := p.apidef(route, r.Method)
	rc.Requests++
	rc.TotalReqSize += max(r.ContentLength, 0)
	rc.response(code, ms, w.Written())
	if code >= 400 {
		p.lastErrors = append(p.lastErrors, ErrorInfo{Time: time.Now(), Method: r.Method, Path: r.URL.Path,
			Route: route, Code: code, Duration: ms, Remote: r.RemoteAddr})
		if len(p.lastErrors) > p.maxErrors {
			p.lastErrors = p.lastErrors[len(p.lastErrors)-p.maxErrors:]
		}
	}
	p.lock.Unlock()

	p.metrics.response(r.Method, route, code, float64(elapsed.Microseconds())/1000)
	return nil
}

// Stats returns snapshot with startts and all sections always present and others selected by fields,
// i.e. ?fields=method,apidefs or ?fields=method&fields=lasterrors
func (p *Processor) Stats(q sws.Query) (any, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	res := map[string]any{
		"startts": p.startTS.UnixMilli(),
		"all":     p.all,
		"active":  p.all.Requests - p.all.Responses,
	}

	for _, f := range fields(q) {
		switch f {
		case "method":
			mm := make(map[string]Counts, len(p.methods))
			for k, v := range p.methods {
				mm[k] = *v
			}
			res["method"] = mm
		case "apidefs":
			defs := make(map[string]map[string]Counts, len(p.apidefs))
			for route, methods := range p.apidefs {
				defs[route] = make(map[string]Counts, len(methods))
				for m, c := range methods {
					defs[route][m] = *c
				}
			}
			res["apidefs"] = defs
		case "lasterrors":
			errs := make([]ErrorInfo, len(p.lastErrors))
			copy(errs, p.lastErrors)
			res["lasterrors"] = errs
		case "sys":
			res["sys"] = sysInfo(p.startTS)
		}
	}
	return res, nil
}

// Metrics returns all metrics in text exposition format
func (p *Processor) Metrics() ([]byte, error) {
	return p.metrics.exposition()
}

func (p *Processor) method(m string) *Counts {
	c, ok := p.methods[m]
	if !ok {
		c = &Counts{}
		p.methods[m] = c
	}
	return c
}

func (p *Processor) apidef(route, method string) *Counts {
	methods, ok := p.apidefs[route]
	if !ok {
		methods = map[string]*Counts{}
		p.apidefs[route] = methods
	}
	c, ok := methods[method]
	if !ok {
		c = &Counts{}
		methods[method] = c
	}
	return c
}

func (c *Counts) response(code int, ms, size int64) {
	c.Responses++
	c.TotalResSize += size
	c.TotalTime += ms
	if ms > c.MaxTime {
		c.MaxTime = ms
	}
	c.AvgTime = float64(c.TotalTime) / float64(c.Responses)

	switch {
	case code >= 500:
		c.ServerError++
		c.Errors++
	case code >= 400:
		c.ClientError++
		c.Errors++
	case code >= 300:
		c.Redirect++
	case code >= 200:
		c.Success++
	default:
		c.Info++
	}
}

// routeOf returns path part of the pattern matched by http.ServeMux
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// fields collects requested sections from all "fields" values, comma separated or repeated
func fields(q sws.Query) []string {
	seen := map[string]bool{}
	var res []string
	for _, v := range q.List("fields") {
		for _, f := range strings.Split(v, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			res = append(res, f)
		}
	}
	sort.Strings(res)
	return res
}

type sys struct {
	Uptime     int64  `json:"uptime"` // seconds
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

func sysInfo(start time.Time) sys {
	ms := runtime.MemStats{}
	runtime.ReadMemStats(&ms)
	return sys{
		Uptime:     int64(time.Since(start).Seconds()),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapInuse:  ms.HeapInuse,
		Sys:        ms.Sys,
		NumGC:      ms.NumGC,
	}
}
