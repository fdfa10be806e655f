// db/mongodb/connect.go
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// PoolConfig holds driver pool and timeout settings.
type PoolConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

// DefaultPoolConfig suits a single web instance against a shared cluster.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxPoolSize:            50,
		MinPoolSize:            2,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
	}
}

// Connect opens a client and pings the primary. The whole attempt is bounded
// by pool.ConnectTimeout (10s if unset). The caller must Disconnect the client.
func Connect(ctx context.Context, uri string, pool PoolConfig) (*mongo.Client, error) {
	timeout := pool.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetAppName("stockwatch")
	if pool.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(pool.MaxPoolSize)
	}
	if pool.MinPoolSize > 0 {
		opts.SetMinPoolSize(pool.MinPoolSize)
	}
	if pool.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(pool.MaxConnIdleTime)
	}
	if pool.ConnectTimeout > 0 {
		opts.SetConnectTimeout(pool.ConnectTimeout)
	}
	if pool.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(pool.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
