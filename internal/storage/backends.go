package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/keshon/pokebox/datastore"
	"github.com/keshon/pokebox/internal/pokemon"
	"github.com/keshon/pokebox/internal/redis"
)

// ----- datastore (JSON file) -----

type datastoreBackend struct {
	ds *datastore.DataStore
}

// NewDatastoreBackend keeps records in the JSON datastore under "user:<key>".
func NewDatastoreBackend(ds *datastore.DataStore) Backend {
	return &datastoreBackend{ds: ds}
}

func (b *datastoreBackend) Load(_ context.Context, key string) (*pokemon.Record, bool, error) {
	var rec pokemon.Record
	ok, err := b.ds.Get("user:"+key, &rec)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &rec, true, nil
}

func (b *datastoreBackend) Save(_ context.Context, records map[string]*pokemon.Record) error {
	values := make(map[string]any, len(records))
	for key, rec := range records {
		values["user:"+key] = rec
	}
	return b.ds.PutAll(values)
}

func (b *datastoreBackend) Close() error {
	return b.ds.Close()
}

// ----- redis -----

const redisKeyPrefix = "pokebox:user:"

type redisBackend struct {
	client redis.Client
}

// RedisConfig contains configuration for the Redis backend.
type RedisConfig struct {
	Client redis.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.New("client cannot be nil")
	}
	return nil
}

// NewRedisBackend stores each record as a JSON string.
func NewRedisBackend(cfg *RedisConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisBackend{client: cfg.Client}, nil
}

func (b *redisBackend) Load(ctx context.Context, key string) (*pokemon.Record, bool, error) {
	raw, err := b.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get record: %w", err)
	}

	var rec pokemon.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, true, nil
}

func (b *redisBackend) Save(ctx context.Context, records map[string]*pokemon.Record) error {
	pipe := b.client.TxPipeline()
	for key, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		pipe.Set(ctx, redisKeyPrefix+key, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

func (b *redisBackend) Close() error {
	return b.client.Close()
}

// ----- sqlite -----

type sqliteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens (and if needed creates) a SQLite database at path.
func OpenSQLiteBackend(path string) (Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS user_records (
			key        TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Load(ctx context.Context, key string) (*pokemon.Record, bool, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT data FROM user_records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query record: %w", err)
	}

	var rec pokemon.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, true, nil
}

func (b *sqliteBackend) Save(ctx context.Context, records map[string]*pokemon.Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_records (key, data, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			key, string(data), now,
		); err != nil {
			return fmt.Errorf("upsert record: %w", err)
		}
	}
	return tx.Commit()
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

// ----- memory -----

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]*pokemon.Record
}

// NewMemoryBackend keeps records in process memory. Used by the console
// playground and tests.
func NewMemoryBackend() Backend {
	return &memoryBackend{data: make(map[string]*pokemon.Record)}
}

func (b *memoryBackend) Load(_ context.Context, key string) (*pokemon.Record, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (b *memoryBackend) Save(_ context.Context, records map[string]*pokemon.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, rec := range records {
		b.data[key] = rec.Clone()
	}
	return nil
}

func (b *memoryBackend) Close() error { return nil }
