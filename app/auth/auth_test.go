package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/umputun/sws/app/settings"
)

func prepEngine(t *testing.T) *Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("passwd1"), bcrypt.MinCost)
	require.NoError(t, err)
	s := settings.New("/sws")
	s.Auth.Enabled = true
	s.Auth.Users = []string{"user1:" + string(hash)}
	s.Auth.MaxAge = time.Minute
	return New(s, nil)
}

func TestEngine_ProcessAuth(t *testing.T) {
	e := prepEngine(t)

	tbl := []struct {
		name    string
		path    string
		setAuth func(r *http.Request)
		code    int
		authed  bool
		body    string
		cookie  bool
	}{
		{name: "no credentials", path: "/sws/stats", setAuth: func(r *http.Request) {}, code: 403,
			body: "Authentication required"},
		{name: "wrong password", path: "/sws/stats", setAuth: func(r *http.Request) { r.SetBasicAuth("user1", "bad") },
			code: 403, body: "Invalid credentials"},
		{name: "unknown user", path: "/sws/stats", setAuth: func(r *http.Request) { r.SetBasicAuth("user2", "passwd1") },
			code: 403, body: "Invalid credentials"},
		{name: "valid on stats", path: "/sws/stats", setAuth: func(r *http.Request) { r.SetBasicAuth("user1", "passwd1") },
			code: 200, authed: true, cookie: true},
		{name: "valid on metrics", path: "/sws/metrics", setAuth: func(r *http.Request) { r.SetBasicAuth("user1", "passwd1") },
			code: 200, authed: true},
		{name: "unknown session", path: "/sws/stats", setAuth: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "blah"})
		}, code: 403, body: "Authentication required"},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			tt.setAuth(req)
			wr := httptest.NewRecorder()
			authed, err := e.ProcessAuth(wr, req)
			require.NoError(t, err)
			assert.Equal(t, tt.authed, authed)
			assert.Equal(t, tt.code, wr.Code)
			assert.Equal(t, tt.body, wr.Body.String())
			cookies := wr.Result().Cookies()
			if !tt.cookie {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, SessionCookie, cookies[0].Name)
			assert.Equal(t, "/sws", cookies[0].Path)
			assert.Equal(t, 60, cookies[0].MaxAge)
			assert.True(t, cookies[0].HttpOnly)
		})
	}
}

func TestEngine_SessionFlow(t *testing.T) {
	e := prepEngine(t)

	req := httptest.NewRequest("GET", "/sws/stats", http.NoBody)
	req.SetBasicAuth("user1", "passwd1")
	wr := httptest.NewRecorder()
	authed, err := e.ProcessAuth(wr, req)
	require.NoError(t, err)
	require.True(t, authed)
	cookies := wr.Result().Cookies()
	require.Len(t, cookies, 1)
	sid := cookies[0].Value

	// session alone is enough
	req = httptest.NewRequest("GET", "/sws/ux/index.html", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	wr = httptest.NewRecorder()
	authed, err = e.ProcessAuth(wr, req)
	require.NoError(t, err)
	assert.True(t, authed)
	assert.Equal(t, http.StatusOK, wr.Code)

	// logout drops session and expires cookie
	req = httptest.NewRequest("GET", "/sws/logout", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	wr = httptest.NewRecorder()
	require.NoError(t, e.ProcessLogout(wr, req))
	assert.Equal(t, http.StatusOK, wr.Code)
	assert.Equal(t, "OK", wr.Body.String())
	cookies = wr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	req = httptest.NewRequest("GET", "/sws/stats", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	wr = httptest.NewRecorder()
	authed, err = e.ProcessAuth(wr, req)
	require.NoError(t, err)
	assert.False(t, authed)
	assert.Equal(t, http.StatusForbidden, wr.Code)
}

func TestEngine_Disabled(t *testing.T) {
	e := New(settings.New("/sws"), nil)
	wr := httptest.NewRecorder()
	authed, err := e.ProcessAuth(wr, httptest.NewRequest("GET", "/sws/stats", http.NoBody))
	require.NoError(t, err)
	assert.False(t, authed, "allowed, but not authenticated")
	assert.Equal(t, http.StatusOK, wr.Code)
	assert.Empty(t, wr.Body.String())

	wr = httptest.NewRecorder()
	require.NoError(t, e.ProcessLogout(wr, httptest.NewRequest("GET", "/sws/logout", http.NoBody)))
	assert.Equal(t, http.StatusOK, wr.Code)
	assert.Equal(t, "OK", wr.Body.String())
	assert.Empty(t, wr.Result().Cookies())
}

func TestEngine_StoreErrors(t *testing.T) {
	e := prepEngine(t)
	e.Store = failingStore{}

	req := httptest.NewRequest("GET", "/sws/stats", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid"})
	_, err := e.ProcessAuth(httptest.NewRecorder(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't check session")

	req = httptest.NewRequest("GET", "/sws/stats", http.NoBody)
	req.SetBasicAuth("user1", "passwd1")
	_, err = e.ProcessAuth(httptest.NewRecorder(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't create session")

	req = httptest.NewRequest("GET", "/sws/logout", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid"})
	wr := httptest.NewRecorder()
	require.Error(t, e.ProcessLogout(wr, req))
	assert.Empty(t, wr.Body.String(), "nothing written on failed logout")
}

func TestValidateBasicAuthCredentials(t *testing.T) {
	hash1, err := bcrypt.GenerateFromPassword([]byte("passwd1"), bcrypt.MinCost)
	require.NoError(t, err)
	hash2, err := bcrypt.GenerateFromPassword([]byte("passwd2"), bcrypt.MinCost)
	require.NoError(t, err)
	allowed := []string{"user1:" + string(hash1), " user2:" + string(hash2) + " ", "bad-entry", ":" + string(hash1)}

	assert.True(t, validateBasicAuthCredentials("user1", "passwd1", allowed))
	assert.True(t, validateBasicAuthCredentials("user2", "passwd2", allowed))
	assert.False(t, validateBasicAuthCredentials("user1", "passwd2", allowed))
	assert.False(t, validateBasicAuthCredentials("", "passwd1", allowed))
	assert.False(t, validateBasicAuthCredentials("bad-entry", "", allowed))
	assert.False(t, validateBasicAuthCredentials("user1", "passwd1", nil))
}

type failingStore struct{}

func (failingStore) Create(context.Context, string, time.Duration) error {
	return errors.New("store failed")
}

func (failingStore) Touch(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("store failed")
}

func (failingStore) Delete(context.Context, string) error { return errors.New("store failed") }
