package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	redacted = "[REDACTED]"

	// maxLoggedBody caps how much of a body is buffered for logging; thumbnail
	// uploads are multipart and never logged.
	maxLoggedBody = 64 << 10
)

// secretKeys are matched as substrings of lower-cased JSON keys and header names.
var secretKeys = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"cookie",
	"phone",
}

func isSecret(name string) bool {
	name = strings.ToLower(name)
	for _, k := range secretKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs one line when a request arrives and one when it
// completes. Credentials and issued tokens are redacted from both. Successful
// response bodies are not logged; error bodies are, since they carry the code.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			traceID := w.Header().Get(TraceIDHeader)

			logger.InfoContext(r.Context(), "incoming request",
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", Redact(peekBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status()
			attrs := []any{
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			if status >= http.StatusBadRequest {
				attrs = append(attrs, "body", Redact(rec.errBody.Bytes()))
			}
			logger.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// peekBody reads up to maxLoggedBody bytes and restores the body for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

type statusRecorder struct {
	http.ResponseWriter
	code    int
	size    int
	errBody bytes.Buffer
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status() >= http.StatusBadRequest && s.errBody.Len() < maxLoggedBody {
		s.errBody.Write(b)
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if isSecret(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// Redact renders a body for the log with secret JSON fields masked at any
// depth. Bodies that are not JSON are dropped if they mention a secret key.
func Redact(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSecret(string(body)) {
			return redacted
		}
		return string(body)
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return redacted
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, val := range t {
			if isSecret(key) {
				t[key] = redacted
			} else {
				t[key] = redactValue(val)
			}
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}
