package reqflow

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
)

func runMiddleware(t *testing.T, m Middleware, req *http.Request) *http.Request {
	t.Helper()
	var seen *http.Request
	_, err := m(req, RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{StatusCode: 200}, nil
	}))
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return seen
}

func TestHeaderMiddleware(t *testing.T) {
	defaults := http.Header{}
	defaults.Set("Accept", contentTypeJSON)
	defaults.Set("X-Client", "tests")
	m := HeaderMiddleware(defaults)

	req, _ := http.NewRequest(http.MethodGet, typesTestURL, nil)
	req.Header.Set("X-Client", "caller")
	seen := runMiddleware(t, m, req)

	if seen.Header.Get("Accept") != contentTypeJSON {
		t.Errorf("Expected default Accept, got %q", seen.Header.Get("Accept"))
	}
	if seen.Header.Get("X-Client") != "caller" {
		t.Errorf("Expected request header to win, got %q", seen.Header.Get("X-Client"))
	}
	if seen.Header.Get("User-Agent") != UserAgent() {
		t.Errorf("Expected User-Agent %s, got %q", UserAgent(), seen.Header.Get("User-Agent"))
	}

	defaults.Set("Accept", "text/plain")
	again := runMiddleware(t, m, mustRequest(t, http.MethodGet, typesTestURL))
	if again.Header.Get("Accept") != contentTypeJSON {
		t.Error("Expected middleware to keep its own copy of the defaults")
	}
}

func TestHeaderMiddlewareCustomUserAgent(t *testing.T) {
	m := HeaderMiddleware(http.Header{"User-Agent": []string{"custom/1"}})
	seen := runMiddleware(t, m, mustRequest(t, http.MethodGet, typesTestURL))
	if seen.Header.Get("User-Agent") != "custom/1" {
		t.Errorf("Expected custom User-Agent, got %q", seen.Header.Get("User-Agent"))
	}
}

func TestXSRFMiddleware(t *testing.T) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	origin, _ := url.Parse("http://api.test/")
	jar.SetCookies(origin, []*http.Cookie{{Name: "XSRF-TOKEN", Value: "t0k3n", Path: "/"}})
	m := XSRFMiddleware(jar, "XSRF-TOKEN", "X-XSRF-TOKEN")

	tests := []struct {
		name   string
		method string
		url    string
		want   string
	}{
		{"unsafe same host", http.MethodPost, "http://api.test/users", "t0k3n"},
		{"safe method", http.MethodGet, "http://api.test/users", ""},
		{"other host", http.MethodPost, "http://evil.test/users", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := runMiddleware(t, m, mustRequest(t, tt.method, tt.url))
			if got := seen.Header.Get("X-XSRF-TOKEN"); got != tt.want {
				t.Errorf("Expected header %q, got %q", tt.want, got)
			}
		})
	}

	preset := mustRequest(t, http.MethodDelete, "http://api.test/users/1")
	preset.Header.Set("X-XSRF-TOKEN", "mine")
	if got := runMiddleware(t, m, preset).Header.Get("X-XSRF-TOKEN"); got != "mine" {
		t.Errorf("Expected existing header to be kept, got %q", got)
	}
}

func TestJSONContentTypeMiddleware(t *testing.T) {
	m := JSONContentTypeMiddleware()

	withBody, _ := http.NewRequest(http.MethodPost, typesTestURL, strings.NewReader(`{}`))
	if got := runMiddleware(t, m, withBody).Header.Get("Content-Type"); got != contentTypeJSON {
		t.Errorf("Expected JSON content type, got %q", got)
	}

	noBody := mustRequest(t, http.MethodPost, typesTestURL)
	if got := runMiddleware(t, m, noBody).Header.Get("Content-Type"); got != "" {
		t.Errorf("Expected no content type without a body, got %q", got)
	}

	typed, _ := http.NewRequest(http.MethodPost, typesTestURL, strings.NewReader("a=b"))
	typed.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if got := runMiddleware(t, m, typed).Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Errorf("Expected existing content type to be kept, got %q", got)
	}
}

func TestClientAppliesMiddlewareOptions(t *testing.T) {
	server := newFixtureServer(t)
	jar, _ := cookiejar.New(nil)
	client := newTestClient(nil,
		WithDefaultHeaders(http.Header{"X-Trace": []string{"from-defaults"}}),
		WithXSRF(jar, "XSRF-TOKEN", "X-XSRF-TOKEN"),
	)

	var got map[string]string
	if err := client.GetJSON(context.Background(), server.URL+"/headers", &got); err != nil {
		t.Fatalf("GetJSON() returned error: %v", err)
	}
	if got["x-trace"] != "from-defaults" {
		t.Errorf("Expected default header, got %q", got["x-trace"])
	}
	if got["user-agent"] != UserAgent() {
		t.Errorf("Expected User-Agent %s, got %q", UserAgent(), got["user-agent"])
	}
}

func mustRequest(t *testing.T, method, u string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		t.Fatalf("http.NewRequest: %v", err)
	}
	return req
}
