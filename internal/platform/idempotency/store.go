package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Status describes the lifecycle of a stored idempotency record.
type Status string

const (
	StatusInFlight  Status = "in_flight"
	StatusCompleted Status = "completed"
)

// ErrFingerprintMismatch is returned when a key is replayed with a
// different request payload than the one it was reserved for.
var ErrFingerprintMismatch = errors.New("idempotency: request fingerprint mismatch")

// Record is the persisted state attached to an idempotency key.
type Record struct {
	Key         string
	Fingerprint string
	Status      Status
	Response    *Response
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Response captures a completed HTTP response for replay.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Reservation is the outcome of attempting to claim a key.
type Reservation struct {
	// Fresh is true when this request claimed the key and should
	// execute the handler.
	Fresh bool
	// Record is the existing record when Fresh is false.
	Record *Record
}

// Store persists idempotency records keyed by client-supplied keys.
type Store interface {
	// Reserve claims key for a request with the given fingerprint. If the
	// key is already held with the same fingerprint the existing record is
	// returned with Fresh=false. A mismatched fingerprint yields
	// ErrFingerprintMismatch.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Reservation, error)

	// Complete stores the response for a reserved key.
	Complete(ctx context.Context, key string, resp *Response) error

	// Release drops an in-flight reservation after a handler failure so
	// the client can retry with the same key.
	Release(ctx context.Context, key string) error
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// fingerprint derives a stable digest of the request identity: method,
// path, sorted query, host, content type, and body hash.
func fingerprint(r *http.Request, bodyHash string) string {
	query := r.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var qb strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), query[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			qb.WriteString(k)
			qb.WriteByte('=')
			qb.WriteString(v)
			qb.WriteByte('&')
		}
	}
	parts := strings.Join([]string{
		r.Method,
		r.URL.Path,
		qb.String(),
		r.Host,
		r.Header.Get("Content-Type"),
		bodyHash,
	}, "|")
	return sha256Hex([]byte(parts))
}

// sanitizeHeaders keeps only response headers that are safe to replay.
func sanitizeHeaders(h http.Header) http.Header {
	out := http.Header{}
	for _, name := range []string{"Content-Type", "Location"} {
		if v := h.Values(name); len(v) > 0 {
			out[name] = append([]string(nil), v...)
		}
	}
	return out
}
