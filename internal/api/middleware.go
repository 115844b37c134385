package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/cdusync/internal/engine"
)

// loadRetryAfter is the Retry-After hint, in seconds, sent while a bulk
// load is running.
const loadRetryAfter = "2"

// RequireAPIKey admits requests whose bearer token matches apiKey. The
// scheme is case-sensitive and an empty key admits nobody. The key never
// appears in logs or responses.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	want := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			got = strings.TrimSpace(got)
			if !ok || got == "" || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				requestLogger(r.Context()).Warn("admin key rejected",
					"action", "auth_rejected",
					"method", r.Method,
					"path", r.URL.Path,
				)
				WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TagEngineRequest copies the chi request id into the engine context so
// notifications raised while serving the request can be matched to it.
func TagEngineRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetRequestID(r.Context()); id != "" {
			w.Header().Set("X-Request-Id", id)
			r = r.WithContext(engine.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RejectDuringLoad answers 409 while a bulk load replaces the tree, so a
// reload or import cannot interleave with it.
func RejectDuringLoad(status func() engine.Status) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if status().Loading {
				w.Header().Set("Retry-After", loadRetryAfter)
				WriteProblem(w, r, http.StatusConflict, "A bulk load is in progress")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// RequestLogger logs one line per admin request, keyed by the matched
// route pattern. Remote failures (502) and server errors log at error,
// client errors at warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		switch code := rec.code(); {
		case code >= 500:
			level = slog.LevelError
		case code >= 400:
			level = slog.LevelWarn
		}
		requestLogger(r.Context()).Log(r.Context(), level, "admin request",
			"method", r.Method,
			"route", routePattern(r),
			"status", rec.code(),
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Recover turns a handler panic into a 500 problem. The panic value only
// reaches the log.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			requestLogger(r.Context()).Error("handler panic",
				"action", "panic",
				"route", routePattern(r),
				"panic", v,
				"stack", string(debug.Stack()),
			)
			WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
