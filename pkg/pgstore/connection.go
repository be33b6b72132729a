// Package pgstore persists and reloads the graph's relational schema —
// Nodes, Ways, WayNodes, Segments, WayLabels — against Postgres.
package pgstore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// Config holds the connection pool configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// LoadConfigFromEnv loads Config from environment variables, falling back
// to locally-sensible defaults for each.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("MROUTER_DB_PORT", "5432"))
	minConns, _ := strconv.Atoi(getEnv("MROUTER_DB_MIN_CONNS", "2"))
	maxConns, _ := strconv.Atoi(getEnv("MROUTER_DB_MAX_CONNS", "10"))

	return &Config{
		Host:     getEnv("MROUTER_DB_HOST", "localhost"),
		Port:     port,
		Database: getEnv("MROUTER_DB_NAME", "mrouter"),
		User:     getEnv("MROUTER_DB_USER", "postgres"),
		Password: getEnv("MROUTER_DB_PASSWORD", ""),
		SSLMode:  getEnv("MROUTER_DB_SSLMODE", "disable"),
		MinConns: int32(minConns),
		MaxConns: int32(maxConns),
	}
}

// GetPool returns the process-wide connection pool, initializing it from
// the environment on first call.
func GetPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = initPool(LoadConfigFromEnv())
	})
	return pool, poolErr
}

// InitPoolWithConfig initializes a pool from an explicit Config instead of
// the environment. The returned pool is not the process-wide one GetPool
// returns, and Close does not close it.
func InitPoolWithConfig(config *Config) (*pgxpool.Pool, error) {
	return initPool(config)
}

func initPool(config *Config) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		config.Host, config.Port, config.Database, config.User, config.Password, config.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MinConns = config.MinConns
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Poolers that run in transaction mode (e.g. pgbouncer/Supabase on 6543)
	// don't support session-level prepared statements.
	if config.Port == 6543 {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return p, nil
}

// Close closes the process-wide pool, if initialized.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck pings the pool and confirms the expected schema is present.
func HealthCheck(ctx context.Context) error {
	db, err := GetPool()
	if err != nil {
		return fmt.Errorf("database connection not initialized: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var n int
	if err := db.QueryRow(ctx, "SELECT count(*) FROM Ways").Scan(&n); err != nil {
		return fmt.Errorf("schema not initialized: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
