// Package kv provides the persistent blob-store bridge: named JSON blobs
// read and written wholesale. It is a pure serialization boundary with no
// knowledge of the document shapes it stores.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnavailable wraps connection failures to an external backend so
// callers can distinguish "backend down" from bad configuration.
var ErrUnavailable = errors.New("blob store unavailable")

// Backend selects the blob-store implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendDynamo Backend = "dynamo"
)

// Config holds blob-store configuration. It is assembled by the config
// package, which owns the environment and file layering.
type Config struct {
	Backend   Backend
	DataDir   string // file backend
	RedisAddr string // redis backend
	Dynamo    DynamoConfig
}

// Store reads and writes named binary blobs. Get returns (nil, nil) when
// the key is absent; callers treat unparsable content as absent themselves.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open creates the blob store selected by cfg.Backend
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.DataDir)
	case BackendRedis:
		return NewRedis(cfg.RedisAddr, logger)
	case BackendDynamo:
		return NewDynamo(ctx, cfg.Dynamo, logger)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}
}
