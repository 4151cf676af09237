package database

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverMemory   = "memory"
)

// Store is the key-value settings store every persisted record lives in.
// Get returns ErrNotFound when the key has never been written.
type Store interface {
	Close()
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all values in one transaction.
	SetMany(ctx context.Context, values map[string][]byte) error
}

type Options struct {
	Driver      string
	DatabaseURL string
	BoltPath    string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		if opts.DatabaseURL == "" {
			return nil, errors.New("postgres store requires a database URL")
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	case DriverBolt:
		if opts.BoltPath == "" {
			return nil, errors.New("bolt store requires a file path")
		}
		return NewBolt(opts.BoltPath)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
