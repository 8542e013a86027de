package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Records expire lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Reserve(ctx context.Context, key, fp string, ttl time.Duration) (*Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if rec, ok := s.records[key]; ok {
		if now.Before(rec.ExpiresAt) {
			if rec.Fingerprint != fp {
				return nil, ErrFingerprintMismatch
			}
			return &Reservation{Fresh: false, Record: cloneRecord(rec)}, nil
		}
		delete(s.records, key)
	}
	s.records[key] = &Record{
		Key:         key,
		Fingerprint: fp,
		Status:      StatusInFlight,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	return &Reservation{Fresh: true}, nil
}

func (s *MemoryStore) Complete(ctx context.Context, key string, resp *Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	rec.Status = StatusCompleted
	rec.Response = cloneResponse(resp)
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Sweep drops up to limit expired records and reports how many were removed.
// A limit of zero or less sweeps everything expired.
func (s *MemoryStore) Sweep(limit int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.records {
		if now.Before(rec.ExpiresAt) {
			continue
		}
		delete(s.records, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}
	return removed
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Response = cloneResponse(rec.Response)
	return &out
}

func cloneResponse(resp *Response) *Response {
	if resp == nil {
		return nil
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       append([]byte(nil), resp.Body...),
	}
	return out
}
