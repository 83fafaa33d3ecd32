package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	log "github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sws/app/settings"
	"github.com/umputun/sws/app/sws"
)

func prepServer(t *testing.T) (*Processor, http.Handler) {
	t.Helper()
	proc := New(Config{MaxErrors: 2})
	p := &sws.Plugin{Settings: settings.New("/sws"), Processor: proc, Metrics: proc, L: log.NoOp}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/hello", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("hello")) })
	mux.HandleFunc("POST /api/echo/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(r.PathValue("id")))
	})
	mux.HandleFunc("GET /api/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "failed", http.StatusInternalServerError)
	})
	require.NoError(t, p.Register(mux))
	return proc, p.Middleware(mux)
}

func call(t *testing.T, h http.Handler, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	wr := httptest.NewRecorder()
	h.ServeHTTP(wr, httptest.NewRequest(method, url, strings.NewReader("body")))
	return wr
}

func TestProcessor_Stats(t *testing.T) {
	proc, h := prepServer(t)

	assert.Equal(t, http.StatusOK, call(t, h, "GET", "/api/hello").Code)
	assert.Equal(t, http.StatusOK, call(t, h, "GET", "/api/hello").Code)
	assert.Equal(t, http.StatusCreated, call(t, h, "POST", "/api/echo/123").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, "GET", "/api/nope").Code)
	assert.Equal(t, http.StatusInternalServerError, call(t, h, "GET", "/api/fail").Code)
	assert.Equal(t, http.StatusInternalServerError, call(t, h, "GET", "/api/fail").Code)

	wr := call(t, h, "GET", "/sws/stats?fields=method,apidefs&fields=lasterrors&fields=sys")
	require.Equal(t, http.StatusOK, wr.Code)

	var res struct {
		StartTS    int64                        `json:"startts"`
		All        Counts                       `json:"all"`
		Active     int64                        `json:"active"`
		Method     map[string]Counts            `json:"method"`
		APIDefs    map[string]map[string]Counts `json:"apidefs"`
		LastErrors []ErrorInfo                  `json:"lasterrors"`
		Sys        map[string]any               `json:"sys"`
	}
	require.NoError(t, json.Unmarshal(wr.Body.Bytes(), &res))

	assert.NotZero(t, res.StartTS)
	assert.Equal(t, int64(6), res.All.Requests, "stats request itself not counted")
	assert.Equal(t, int64(6), res.All.Responses)
	assert.Equal(t, int64(0), res.Active)
	assert.Equal(t, int64(3), res.All.Success)
	assert.Equal(t, int64(1), res.All.ClientError)
	assert.Equal(t, int64(2), res.All.ServerError)
	assert.Equal(t, int64(3), res.All.Errors)
	assert.Equal(t, int64(24), res.All.TotalReqSize)

	assert.Equal(t, int64(5), res.Method["GET"].Requests)
	assert.Equal(t, int64(1), res.Method["POST"].Requests)
	assert.Equal(t, int64(1), res.Method["POST"].Success)

	assert.Equal(t, int64(2), res.APIDefs["/api/hello"]["GET"].Responses)
	assert.Equal(t, int64(1), res.APIDefs["/api/echo/{id}"]["POST"].Requests)
	assert.Equal(t, int64(2), res.APIDefs["/api/fail"]["GET"].ServerError)
	assert.Equal(t, int64(1), res.APIDefs[unmatchedRoute]["GET"].ClientError)

	require.Len(t, res.LastErrors, 2, "limited by MaxErrors")
	assert.Equal(t, "/api/fail", res.LastErrors[0].Path)
	assert.Equal(t, http.StatusInternalServerError, res.LastErrors[1].Code)
	assert.Contains(t, res.Sys, "goroutines")

	wr = call(t, h, "GET", "/sws/stats")
	require.Equal(t, http.StatusOK, wr.Code)
	plain := map[string]any{}
	require.NoError(t, json.Unmarshal(wr.Body.Bytes(), &plain))
	assert.Contains(t, plain, "all")
	assert.Contains(t, plain, "startts")
	assert.NotContains(t, plain, "method")
	assert.NotContains(t, plain, "apidefs")

	st, err := proc.Stats(sws.Query{"fields": "unknown"})
	require.NoError(t, err)
	assert.Len(t, st, 3)
}

func TestProcessor_MetricsNoDoubleCount(t *testing.T) {
	_, h := prepServer(t)
	for i := 0; i < 3; i++ {
		call(t, h, "GET", "/api/hello")
	}
	call(t, h, "POST", "/api/echo/1")

	rx := regexp.MustCompile(`(?m)^api_all_request_total (\d+)$`)
	var counts []string
	for i := 0; i < 3; i++ {
		wr := call(t, h, "GET", "/sws/metrics")
		require.Equal(t, http.StatusOK, wr.Code)
		assert.Equal(t, sws.MetricsContentType, wr.Header().Get("Content-Type"))
		m := rx.FindStringSubmatch(wr.Body.String())
		require.Len(t, m, 2, wr.Body.String())
		counts = append(counts, m[1])
	}
	assert.Equal(t, []string{"4", "4", "4"}, counts, "metrics requests are not counted")

	body := call(t, h, "GET", "/sws/metrics").Body.String()
	assert.Contains(t, body, `api_request_total{code="200",method="GET",path="/api/hello"} 3`)
	assert.Contains(t, body, `api_request_total{code="201",method="POST",path="/api/echo/{id}"} 1`)
	assert.Contains(t, body, "api_all_success_total 4")
	assert.Contains(t, body, "api_all_request_in_processing_total 0")
	assert.Contains(t, body, "api_request_duration_milliseconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestProcessor_Direct(t *testing.T) {
	proc := New(Config{})
	req := httptest.NewRequest("DELETE", "/things/1", http.NoBody)
	wr := sws.NewResponse(httptest.NewRecorder(), req)

	require.NoError(t, proc.ProcessRequest(req, wr))
	st, err := proc.Stats(sws.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.(map[string]any)["active"])

	wr.WriteHeader(http.StatusMovedPermanently)
	require.NoError(t, proc.ProcessResponse(wr))
	st, err = proc.Stats(sws.Query{"fields": []string{"method", "apidefs"}})
	require.NoError(t, err)
	res := st.(map[string]any)
	assert.Equal(t, int64(0), res["active"])
	assert.Equal(t, int64(1), res["all"].(Counts).Redirect)
	assert.Equal(t, int64(1), res["method"].(map[string]Counts)["DELETE"].Responses)
	assert.Contains(t, res["apidefs"], unmatchedRoute)
}

func TestFields(t *testing.T) {
	tbl := []struct {
		q   sws.Query
		res []string
	}{
		{sws.Query{}, nil},
		{sws.Query{"fields": "method"}, []string{"method"}},
		{sws.Query{"fields": "method, apidefs,,Method"}, []string{"apidefs", "method"}},
		{sws.Query{"fields": []string{"sys", "lasterrors,method"}}, []string{"lasterrors", "method", "sys"}},
		{sws.Query{"fields": sws.Query{"a": "b"}}, nil},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.res, fields(tt.q), "%v", tt.q)
	}
}

func TestRouteOf(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/1", http.NoBody)
	assert.Equal(t, unmatchedRoute, routeOf(r))
	r.Pattern = "GET /api/{id}"
	assert.Equal(t, "/api/{id}", routeOf(r))
	r.Pattern = "/static/"
	assert.Equal(t, "/static/", routeOf(r))
}
