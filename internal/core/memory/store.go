// Package memory keeps the append-only question/answer history per entity.
// Every backend exposes the same two operations and serializes writers so a
// reader never sees a partially written history.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/driver"
)

const (
	OpRead   = "read"
	OpAppend = "append"
	OpOpen   = "open"
)

type Store interface {
	// Append adds entry at the end of the sequence stored under key.
	Append(ctx context.Context, key string, entry model.MemoryEntry) error
	// ReadAll returns the entries under key in insertion order, or an empty
	// slice when the key is unknown.
	ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error)
	Close(ctx context.Context) error
}

// PersistenceError reports a backend that could not be read or written.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("memory %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("memory %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Key: key, Err: err}
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.MemoryConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		path := cfg.Path
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, persistErr(OpOpen, "", err)
			}
			path = p
		}
		logger.Info("using file memory store", "path", path)
		return NewFileStore(path), nil

	case "memgraph":
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			return nil, persistErr(OpOpen, "", err)
		}
		if err := d.BuildIndices(ctx); err != nil {
			return nil, persistErr(OpOpen, "", err)
		}
		return NewGraphStore(d), nil

	case "redis":
		s, err := NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			return nil, persistErr(OpOpen, "", err)
		}
		return s, nil

	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, persistErr(OpOpen, "", err)
		}
		return s, nil

	case "bucket":
		s, err := NewBucketStore(ctx, cfg.Bucket.Bucket, cfg.Bucket.Object)
		if err != nil {
			return nil, persistErr(OpOpen, "", err)
		}
		return s, nil
	}

	return nil, fmt.Errorf("unsupported memory backend: %s", cfg.Backend)
}
