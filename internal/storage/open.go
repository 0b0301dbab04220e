package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/datastore"
	"github.com/keshon/pokebox/internal/redis"
)

const (
	DriverDatastore = "datastore"
	DriverRedis     = "redis"
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver     string
	Path       string // datastore JSON file
	SQLitePath string
	RedisAddr  string
	Logger     *zap.Logger
}

// Open builds a Storage on the backend named by opts.Driver.
func Open(opts Options) (*Storage, error) {
	var (
		backend Backend
		err     error
	)

	switch opts.Driver {
	case "", DriverDatastore:
		cfg := datastore.DefaultConfig(opts.Path)
		cfg.Logger = opts.Logger
		var ds *datastore.DataStore
		ds, err = datastore.NewWithConfig(cfg)
		if err == nil {
			backend = NewDatastoreBackend(ds)
		}
	case DriverRedis:
		var client redis.Client
		client, err = redis.NewClient(opts.RedisAddr, nil)
		if err == nil {
			backend, err = NewRedisBackend(&RedisConfig{Client: client})
		}
	case DriverSQLite:
		backend, err = OpenSQLiteBackend(opts.SQLitePath)
	case DriverMemory:
		backend = NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", opts.Driver, err)
	}

	return New(backend), nil
}
