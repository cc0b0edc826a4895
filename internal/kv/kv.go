// Package kv provides the small string key-value stores that hold client
// session state between command invocations.
package kv

import (
	"context"
	"fmt"
)

// Store is a namespaced string map. Removing a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend  string
	Path     string
	RedisURL string
	Prefix   string
}

// Open builds the backend named by opts.Backend. The returned close func is
// never nil.
func Open(opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(opts.Prefix), noop, nil
	case BackendFile, "":
		store, err := NewFile(opts.Path, opts.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case BackendRedis:
		store, err := NewRedis(opts.RedisURL, opts.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}
