package store

import (
	"fmt"
	"strings"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver        string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the backend named by opts.Driver: memory, file, sqlite or
// redis.
func Open(opts Options) (KV, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "redis":
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
