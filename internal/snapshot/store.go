package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/types"
)

// Config holds the Redis connection settings for the mirror.
type Config struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	// Key is the Redis key the inventory snapshot is written to.
	Key string `yaml:"key" json:"key"`
	// DialTimeout bounds the initial connection probe.
	DialTimeout time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
}

// DefaultConfig returns the default mirror settings, disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Addr:        "localhost:6379",
		DB:          0,
		Key:         "dispatchd:inventory",
		DialTimeout: 5 * time.Second,
	}
}

// Snapshot is the serialized form of the inventory at one revision.
type Snapshot struct {
	Revision   string            `json:"revision"`
	TakenAt    time.Time         `json:"taken_at"`
	Extensions []types.Extension `json:"extensions"`
}

// Store writes inventory snapshots to Redis.
type Store struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
}

// NewStore connects to Redis and verifies the connection.
func NewStore(config Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &Store{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "snapshot_store")),
	}
	s.logger.Info("snapshot store initialized",
		zap.String("addr", config.Addr),
		zap.String("key", config.Key))
	return s, nil
}

// Save writes the given inventory as a new snapshot revision and
// returns the revision id.
func (s *Store) Save(ctx context.Context, extensions []types.Extension) (string, error) {
	snap := Snapshot{
		Revision:   uuid.NewString(),
		TakenAt:    time.Now().UTC(),
		Extensions: extensions,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, s.config.Key, data, 0).Err(); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("revision", snap.Revision),
		zap.Int("extensions", len(extensions)))
	return snap.Revision, nil
}

// Load reads the latest snapshot. Returns (nil, nil) when no snapshot
// has been written yet.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.redis.Get(ctx, s.config.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Ping probes the Redis connection, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.redis.Close()
}
