package reqflow

import (
	"net/http"
	"net/url"
)

// HeaderMiddleware sets each header in defaults on requests that do not
// already carry it. A User-Agent identifying this library is added unless
// defaults or the request provide one.
func HeaderMiddleware(defaults http.Header) Middleware {
	headers := defaults.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	if headers.Get("User-Agent") == "" {
		headers.Set("User-Agent", UserAgent())
	}

	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		for key, values := range headers {
			if req.Header.Get(key) != "" {
				continue
			}
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		return next.RoundTrip(req)
	}
}

// XSRFMiddleware copies the cookie cookieName for the request URL from jar
// into headerName. Only unsafe methods are decorated, and only when the
// request has no such header already.
func XSRFMiddleware(jar http.CookieJar, cookieName, headerName string) Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		if jar != nil && unsafeMethod(req.Method) && req.Header.Get(headerName) == "" {
			if token := cookieValue(jar, req.URL, cookieName); token != "" {
				req.Header.Set(headerName, token)
			}
		}
		return next.RoundTrip(req)
	}
}

// JSONContentTypeMiddleware marks requests with a body as JSON unless a
// Content-Type is already set.
func JSONContentTypeMiddleware() Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		if req.Body != nil && req.Body != http.NoBody && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
		return next.RoundTrip(req)
	}
}

func unsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// cookieValue looks the cookie up for u itself, so a jar never leaks a
// token to a host it was not set for.
func cookieValue(jar http.CookieJar, u *url.URL, name string) string {
	if u == nil {
		return ""
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
