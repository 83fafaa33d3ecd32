package sws

import (
	"fmt"
	"net/http"

	log "github.com/go-pkgz/lgr"
)

//go:generate moq -out processor_mock.go -fmt goimports . Processor

// Processor is the statistics aggregator notified about requests and responses
type Processor interface {
	ProcessRequest(r *http.Request, w *Response) error
	ProcessResponse(w *Response) error
	Stats(q Query) (any, error)
}

// Notice is the result of a best-effort notification. It can't fail the request,
// the only thing caller can do with it is to report.
type Notice struct {
	Op  string
	Err error
}

// Report logs failed notice, does nothing for successful one
func (n Notice) Report(l log.L) {
	if n.Err != nil {
		l.Logf("[WARN] %s failed, %v", n.Op, n.Err)
	}
}

// notify calls fn and converts both error and panic to Notice
func notify(op string, fn func() error) (res Notice) {
	res.Op = op
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("panic: %v", rec)
		}
	}()
	res.Err = fn()
	return res
}

// Middleware binds pre-dispatch and post-dispatch hooks around next.
// Pre-dispatch tags the request and notifies processor about tracked requests before next called.
// Post-dispatch notifies processor once next returned and response completed, also if next panics.
// Neither hook touches the response besides wrapping the writer.
func (p *Plugin) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, rc := p.tag(r)
		resp := newResponse(w, r, rc)

		if !rc.Track || p.Processor == nil {
			next.ServeHTTP(resp, r)
			return
		}

		notify("process request", func() error { return p.Processor.ProcessRequest(r, resp) }).Report(p.logger())

		defer func() {
			rec := recover()
			if rec != nil && !resp.Committed() {
				resp.status = http.StatusInternalServerError
			}
			notify("process response", func() error { return p.Processor.ProcessResponse(resp) }).Report(p.logger())
			if rec != nil {
				panic(rec)
			}
		}()
		next.ServeHTTP(resp, r)
	})
}
