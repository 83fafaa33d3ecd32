package sws

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Response wraps http.ResponseWriter, keeps status code and size of the response
// and carries back-reference to the paired request, so the post-dispatch side can get to it.
type Response struct {
	http.ResponseWriter
	req         *http.Request
	rc          *RequestContext
	status      int
	written     int64
	wroteHeader bool
	started     time.Time
}

// NewResponse wraps w for the request. RequestContext attached to the request, if any, is picked up.
func NewResponse(w http.ResponseWriter, r *http.Request) *Response {
	var rc *RequestContext
	if r != nil {
		rc, _ = FromContext(r.Context())
	}
	return newResponse(w, r, rc)
}

// newResponse makes Response for the request, reuses w if it is already a Response
func newResponse(w http.ResponseWriter, r *http.Request, rc *RequestContext) *Response {
	if resp, ok := w.(*Response); ok {
		return resp
	}
	return &Response{ResponseWriter: w, req: r, rc: rc, status: http.StatusOK, started: time.Now()}
}

// Request returns the paired request
func (rw *Response) Request() *http.Request { return rw.req }

// RequestContext returns side channel of the paired request
func (rw *Response) RequestContext() *RequestContext { return rw.rc }

// Status returns status code written, 200 if nothing written yet
func (rw *Response) Status() int { return rw.status }

// Written returns number of body bytes written
func (rw *Response) Written() int64 { return rw.written }

// Committed returns true once status and headers sent to the client
func (rw *Response) Committed() bool { return rw.wroteHeader }

// Started returns time the response was created at
func (rw *Response) Started() time.Time { return rw.started }

// WriteHeader wraps http.ResponseWriter and stores status code
func (rw *Response) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write wraps http.ResponseWriter and counts written bytes
func (rw *Response) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Flush delegates to the original writer if it implements http.Flusher
func (rw *Response) Flush() {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack delegate to the original writer if it implements http.Hijacker
func (rw *Response) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	conn, buf, err := h.Hijack()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hijack connection: %w", err)
	}
	rw.wroteHeader = true
	return conn, buf, nil
}

// Unwrap returns the original writer, used by http.ResponseController
func (rw *Response) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
