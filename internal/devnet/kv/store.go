// Package kv is the key-value layer underneath the dev chain.
package kv

import (
	"errors"
)

// ErrNotFound is returned by Get for missing keys
var ErrNotFound = errors.New("kv: key not found")

// Reader reads keys and prefix ranges
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterate calls fn for every key with the prefix in ascending key order.
	// Returning an error from fn stops the iteration and is returned.
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// Writer mutates keys
type Writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Store is a durable key-value store
type Store interface {
	Reader
	Writer
	// Batch applies all writes made by fn atomically
	Batch(fn func(w Writer) error) error
	Close() error
}

func hasPrefix(key, prefix []byte) bool {
	return len(key) >= len(prefix) && string(key[:len(prefix)]) == string(prefix)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
