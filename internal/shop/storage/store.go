// Package storage provides the client-local key-value persistence the
// shopping workflow uses for its cart and customer form state.
package storage

import "errors"

// Well-known keys used by the shopping client.
const (
	KeyCart         = "cart"
	KeyCustomerInfo = "customerInfo"
)

// ErrNotFound reports an absent key.
var ErrNotFound = errors.New("storage: key not found")

// Store persists named serialized blobs across client restarts.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
