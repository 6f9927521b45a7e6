package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/travel-booking/internal"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 255
	maxIdempotentBody       = 1 << 20

	// IdempotencyLockTTL bounds how long a reservation survives a crashed
	// handler. It must outlast the slowest gateway round trip.
	IdempotencyLockTTL = time.Minute
)

// CachedResponse is what gets replayed for a repeated key.
type CachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyEntry is stored under a key from reservation onwards. Response
// is nil while the first request is still running.
type IdempotencyEntry struct {
	Fingerprint string          `json:"fingerprint"`
	Response    *CachedResponse `json:"response,omitempty"`
}

func (e *IdempotencyEntry) InProgress() bool {
	return e.Response == nil
}

// IdempotencyStore persists entries by key.
//
// Reserve writes entry only when key is unused and reports whether it did.
// Get reports found=false for an unknown key. Complete overwrites the
// reservation with the final entry. Release drops a reservation so the key
// can be retried.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, entry *IdempotencyEntry, ttl time.Duration) (reserved bool, err error)
	Get(ctx context.Context, key string) (entry *IdempotencyEntry, found bool, err error)
	Complete(ctx context.Context, key string, entry *IdempotencyEntry, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Fingerprint identifies the request a key was first used with.
func Fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	_, _ = io.WriteString(h, method)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, path)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency runs a handler at most once per Idempotency-Key.
//
// The key is reserved before the handler runs. A duplicate arriving while the
// first request is running gets 409. A finished response is replayed only
// when the method, path and body match the first request; otherwise 422.
// Requests without the header pass through. Store errors are logged and the
// request is processed normally. 5xx responses release the key so the caller
// may retry them.
func Idempotency(store IdempotencyStore, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if store == nil || key == "" || len(key) > maxIdempotencyKeyLength {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
				if err != nil {
					writeAppError(w, errors.NewValidationError("Unable to read request body", errors.ErrCodeValidationFailed))
					return
				}
				if len(body) > maxIdempotentBody {
					writeAppError(w, errors.ErrBodyTooLarge)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			fingerprint := Fingerprint(r.Method, r.URL.Path, body)
			log := logger.With("idempotency_key", key)

			reserved, err := store.Reserve(r.Context(), key, &IdempotencyEntry{Fingerprint: fingerprint}, IdempotencyLockTTL)
			if err != nil {
				log.Warn("idempotency reservation failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !reserved {
				entry, found, err := store.Get(r.Context(), key)
				switch {
				case err != nil:
					log.Warn("idempotency lookup failed", "error", err)
					writeAppError(w, errors.ErrRequestInProgress)
				case !found:
					// Expired between Reserve and Get.
					writeAppError(w, errors.ErrRequestInProgress)
				case entry.Fingerprint != fingerprint:
					log.Warn("idempotency key reused with a different request")
					writeAppError(w, errors.ErrIdempotencyReused)
				case entry.InProgress():
					log.Info("idempotent request still in progress")
					writeAppError(w, errors.ErrRequestInProgress)
				default:
					log.Info("replaying idempotent response", "status_code", entry.Response.StatusCode)
					replay(w, entry.Response)
				}
				return
			}

			rec := newResponseWriter(w)
			next.ServeHTTP(rec, r)

			storeCtx := context.WithoutCancel(r.Context())
			status := rec.Status()
			if status >= http.StatusInternalServerError {
				if err := store.Release(storeCtx, key); err != nil {
					log.Warn("idempotency release failed", "error", err)
				}
				return
			}

			entry := &IdempotencyEntry{
				Fingerprint: fingerprint,
				Response: &CachedResponse{
					StatusCode:  status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				},
			}
			if err := store.Complete(storeCtx, key, entry, ttl); err != nil {
				log.Warn("idempotency store failed", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, resp *CachedResponse) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
