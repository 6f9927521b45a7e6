package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// sensitiveFields are field names that should be filtered from logs
var sensitiveFields = []string{
	"authorization",
	"secret",
	"api_key",
	"token",
	"cookie",
	"credential",
}

// maskedFields are logged in a shortened form: enough to correlate, not
// enough to identify the payer.
var maskedFields = []string{
	"email",
	"guest_email",
}

const maxLoggedBody = 4 << 10

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())

			logRequest(logger, r, reqID)

			ww := newResponseWriter(w)

			next.ServeHTTP(ww, r)

			logResponse(logger, r, ww, time.Since(start), reqID)
		})
	}
}

// responseWriter captures the status code and body of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// peekedBody serves the bytes already read for logging, then the rest of
// the original body, and closes the original.
type peekedBody struct {
	io.Reader
	io.Closer
}

// peekBody reads at most maxLoggedBody+1 bytes and leaves r.Body intact for
// the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = peekedBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
	return head
}

func logRequest(logger *slog.Logger, r *http.Request, reqID string) {
	bodyBytes := peekBody(r)
	loggedBody := "[BODY OVER " + strconv.Itoa(maxLoggedBody) + " bytes]"
	if len(bodyBytes) <= maxLoggedBody {
		loggedBody = filterSensitiveBody(r.Header.Get("Content-Type"), bodyBytes)
	}

	logger.Info("incoming request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", loggedBody,
	)
}

func logResponse(logger *slog.Logger, r *http.Request, rw *responseWriter, duration time.Duration, reqID string) {
	statusCode := rw.Status()

	logLevel := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		logLevel = slog.LevelWarn
	} else if statusCode >= 500 {
		logLevel = slog.LevelError
	}

	logger.Log(r.Context(), logLevel, "response",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.body.Len(),
		"body", filterSensitiveBody(rw.Header().Get("Content-Type"), rw.body.Bytes()),
	)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func isMasked(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range maskedFields {
		if lower == field {
			return true
		}
	}
	return false
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return "[MASKED]"
	}
	return value[:1] + "***" + value[at:]
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}

	return filtered
}

// filterSensitiveBody renders JSON and form bodies with sensitive fields
// removed. Other bodies are summarized by size.
func filterSensitiveBody(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "[UNPARSEABLE FORM]"
		}
		return filterSensitiveForm(values).Encode()
	}

	var jsonData interface{}
	if err := json.Unmarshal(body, &jsonData); err != nil {
		if len(body) > maxLoggedBody {
			return "[NON-JSON BODY " + strconv.Itoa(len(body)) + " bytes]"
		}
		for _, field := range sensitiveFields {
			if strings.Contains(strings.ToLower(string(body)), field) {
				return "[FILTERED - Contains sensitive data]"
			}
		}
		return string(body)
	}

	filteredBytes, err := json.Marshal(filterSensitiveJSON(jsonData))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	if len(filteredBytes) > maxLoggedBody {
		return string(filteredBytes[:maxLoggedBody]) + "...[TRUNCATED]"
	}
	return string(filteredBytes)
}

func filterSensitiveForm(values url.Values) url.Values {
	filtered := make(url.Values, len(values))
	for key, vals := range values {
		switch {
		case isSensitive(key):
			filtered[key] = []string{"[FILTERED]"}
		case isMasked(key):
			masked := make([]string, len(vals))
			for i, v := range vals {
				masked[i] = maskEmail(v)
			}
			filtered[key] = masked
		default:
			filtered[key] = vals
		}
	}
	return filtered
}

// filterSensitiveJSON recursively filters sensitive fields from JSON data
func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{})
		for key, value := range v {
			switch {
			case isSensitive(key):
				filtered[key] = "[FILTERED]"
			case isMasked(key):
				if s, ok := value.(string); ok {
					filtered[key] = maskEmail(s)
				} else {
					filtered[key] = "[MASKED]"
				}
			default:
				filtered[key] = filterSensitiveJSON(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
