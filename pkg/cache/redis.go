// Package cache provides a process-external Redis cache for two query-time
// conveniences: parsed CostModelConfigs and full route results. It is used
// only by the HTTP boundary (pkg/api) — the traversal engine itself has no
// shared mutable state between queries and never touches this package.
package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mrouter/pkg/cost"
	"mrouter/pkg/routing"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds the Redis connection and TTL configuration.
type Config struct {
	Host       string
	Port       int
	Password   string
	DB         int
	RouteTTL   time.Duration
	ConfigTTL  time.Duration
	TLSEnabled bool
}

// LoadConfigFromEnv loads Config from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("MROUTER_REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("MROUTER_REDIS_DB", "0"))
	routeTTL, _ := time.ParseDuration(getEnv("MROUTER_CACHE_ROUTE_TTL", "10m"))
	configTTL, _ := time.ParseDuration(getEnv("MROUTER_CACHE_CONFIG_TTL", "1h"))

	return &Config{
		Host:       getEnv("MROUTER_REDIS_HOST", "localhost"),
		Port:       port,
		Password:   getEnv("MROUTER_REDIS_PASSWORD", ""),
		DB:         db,
		RouteTTL:   routeTTL,
		ConfigTTL:  configTTL,
		TLSEnabled: getEnv("MROUTER_REDIS_TLS_ENABLED", "false") == "true",
	}
}

// GetClient returns the process-wide Redis client, initializing it from the
// environment on first call.
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}
		if config.TLSEnabled {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to redis: %w", err)
		}
	})
	return client, clientErr
}

// Close closes the process-wide client.
func Close() {
	if client != nil {
		client.Close()
	}
}

// RouteKey derives a deterministic cache key for a route query from its
// endpoints, cost model, and heuristic weight — two identical queries
// always hash to the same key, two queries differing in any of these never
// collide.
func RouteKey(startLat, startLon, endLat, endLon float64, model cost.Model, heuristicWeight float32) string {
	data := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%+v,%f", startLat, startLon, endLat, endLon, model, heuristicWeight)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("route:%x", hash[:16])
}

// ConfigKey derives a cache key for a raw CostModelConfig request body —
// construction-time validation in pkg/cost is pure, so the same body always
// validates (or fails) the same way.
func ConfigKey(rawConfigJSON []byte) string {
	hash := sha256.Sum256(rawConfigJSON)
	return fmt.Sprintf("costmodel:%x", hash[:16])
}

// GetRoute retrieves a cached route, returning (nil, nil) on a cache miss.
func GetRoute(ctx context.Context, key string) (*routing.Route, error) {
	c, err := GetClient()
	if err != nil {
		return nil, err
	}
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var route routing.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("unmarshal cached route: %w", err)
	}
	return &route, nil
}

// SetRoute caches a route under key for the configured RouteTTL.
func SetRoute(ctx context.Context, key string, route routing.Route, ttl time.Duration) error {
	c, err := GetClient()
	if err != nil {
		return err
	}
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// GetConfig retrieves a cached, already-validated cost.Config — a hit means
// the caller can skip re-running cost.Build's validation for a request body
// it has seen before.
func GetConfig(ctx context.Context, key string) (*cost.Config, error) {
	c, err := GetClient()
	if err != nil {
		return nil, err
	}
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var config cost.Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshal cached cost model config: %w", err)
	}
	return &config, nil
}

// SetConfig caches a cost.Config that has already passed cost.Build's
// validation, under key, for the configured ConfigTTL.
func SetConfig(ctx context.Context, key string, config cost.Config, ttl time.Duration) error {
	c, err := GetClient()
	if err != nil {
		return err
	}
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal cost model config: %w", err)
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// HealthCheck pings the Redis connection.
func HealthCheck(ctx context.Context) error {
	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("redis client not initialized: %w", err)
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
