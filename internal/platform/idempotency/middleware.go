package idempotency

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nordmart/storefront/internal/platform/httpx"
)

const headerKey = "Idempotency-Key"

const (
	defaultTTL         = 24 * time.Hour
	defaultMaxBodySize = 1 << 20
)

// Options configure the Middleware.
type Options struct {
	Store Store
	// TTL bounds how long completed responses are replayed. Defaults to
	// 24 hours.
	TTL time.Duration
	// Methods lists the HTTP methods the middleware guards. Defaults to
	// POST only; reads are naturally idempotent and the storefront does
	// not retry deletes.
	Methods []string
	// MaxBodySize caps how much of the request body is buffered for
	// fingerprinting. Defaults to 1 MiB.
	MaxBodySize int64
	// Header names the request header carrying the key. Defaults to
	// Idempotency-Key.
	Header string
	Logger *zap.Logger
}

// Middleware deduplicates retried mutations carrying an Idempotency-Key
// header. Requests without the header pass through untouched. A replayed
// key returns the stored response; a key still in flight returns 409.
func Middleware(opts Options) func(http.Handler) http.Handler {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodPost}
	}
	guarded := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		guarded[m] = struct{}{}
	}
	header := opts.Header
	if header == "" {
		header = headerKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := guarded[r.Method]; !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get(header)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
				return
			}
			_ = r.Body.Close()
			if int64(len(body)) > maxBody {
				respondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds idempotency buffer limit")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fp := fingerprint(r, sha256Hex(body))
			res, err := opts.Store.Reserve(r.Context(), key, fp, ttl)
			if err == ErrFingerprintMismatch {
				respondError(w, http.StatusUnprocessableEntity, "idempotency_key_reused", "idempotency key was used with a different request")
				return
			}
			if err != nil {
				logger.Error("idempotency reserve failed", zap.Error(err))
				respondError(w, http.StatusServiceUnavailable, "idempotency_unavailable", "idempotency store unavailable")
				return
			}

			if !res.Fresh {
				rec := res.Record
				if rec.Status == StatusInFlight || rec.Response == nil {
					respondError(w, http.StatusConflict, "request_in_flight", "a request with this idempotency key is still being processed")
					return
				}
				writeStoredResponse(w, rec.Response)
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				if err := opts.Store.Release(r.Context(), key); err != nil {
					logger.Warn("idempotency release failed", zap.Error(err))
				}
				return
			}
			stored := &Response{
				StatusCode: rec.status,
				Header:     sanitizeHeaders(w.Header()),
				Body:       rec.body.Bytes(),
			}
			if err := opts.Store.Complete(r.Context(), key, stored); err != nil {
				logger.Warn("idempotency complete failed", zap.Error(err))
			}
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func writeStoredResponse(w http.ResponseWriter, resp *Response) {
	for name, vals := range resp.Header {
		for _, v := range vals {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("Idempotency-Replayed", "true")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(httpx.NewError(code, message, status))
}
