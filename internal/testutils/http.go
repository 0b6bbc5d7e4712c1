package testutils

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServer is an httptest server plus a browser-like client that keeps
// cookies and does not follow redirects
type TestServer struct {
	*httptest.Server
	Client *http.Client
	t      *testing.T
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestServer{
		Server: server,
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t: t,
	}
}

func (ts *TestServer) GET(path string) *http.Response {
	resp, err := ts.Client.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

// POSTForm submits form fields the way an HTML form does
func (ts *TestServer) POSTForm(path string, form url.Values) *http.Response {
	resp, err := ts.Client.PostForm(ts.URL+path, form)
	require.NoError(ts.t, err)
	return resp
}

// ForgetCookies drops every cookie the client holds
func (ts *TestServer) ForgetCookies() {
	jar, err := cookiejar.New(nil)
	require.NoError(ts.t, err)
	ts.Client.Jar = jar
}

// ReadBody reads and closes the response body
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// AssertRedirect checks for a 302 to location and closes the body
func AssertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

// Form builds url.Values from alternating keys and values
func Form(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

// ContainsAll reports whether s contains every part
func ContainsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
