package finder

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer.
type Middleware func(next Doer) Doer

// Chain wraps base with middleware. The first middleware is the outermost:
// it sees the request first and the response last.
func Chain(base Doer, middleware ...Middleware) Doer {
	d := base
	for i := len(middleware) - 1; i >= 0; i-- {
		d = middleware[i](d)
	}
	return d
}

const (
	cacheBustParam   = "_t"
	maxErrorBodySize = 64 << 10
)

type opKey struct{}

// normalizeErrors converts every failure below it into *Error, including
// non-2xx responses. A successful return always has a 2xx status.
func normalizeErrors() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			op, _ := req.Context().Value(opKey{}).(string)
			resp, err := next.Do(req)
			if err != nil {
				return nil, normalize(op, err)
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
				_ = resp.Body.Close()
				return nil, serverError(op, resp.StatusCode, body)
			}
			return resp, nil
		})
	}
}

// logRequests records method and URL on the way out and status and URL on the
// way back.
func logRequests(logger *slog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			target := req.URL.Redacted()
			logger.Debug("api request", "method", req.Method, "url", target)
			start := time.Now()
			resp, err := next.Do(req)
			if err != nil {
				logger.Warn("api request failed",
					"method", req.Method,
					"url", target,
					"elapsed", time.Since(start).Round(time.Millisecond),
					"error", err)
				return nil, err
			}
			level := slog.LevelDebug
			if resp.StatusCode >= 400 {
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "api response",
				"status", resp.StatusCode,
				"url", target,
				"elapsed", time.Since(start).Round(time.Millisecond))
			return resp, nil
		})
	}
}

// cacheBust stamps every request with a time-ordered token so intermediate
// caches never serve a stale response. UUIDv7 values sort in issue order.
func cacheBust() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("cache-bust token: %w", err)
			}
			req = req.Clone(req.Context())
			q := req.URL.Query()
			q.Set(cacheBustParam, token.String())
			req.URL.RawQuery = q.Encode()
			return next.Do(req)
		})
	}
}

// defaultHeaders attaches the fixed JSON headers. A Content-Type already on the
// request (the multipart upload) is left alone.
func defaultHeaders(userAgent string) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", userAgent)
			if strings.TrimSpace(req.Header.Get("Content-Type")) == "" {
				req.Header.Set("Content-Type", "application/json")
			}
			return next.Do(req)
		})
	}
}
