package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Clearer is implemented by backends that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend         string
	Dir             string
	RedisAddr       string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the configured backend. An empty backend name means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.RedisAddr)
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
