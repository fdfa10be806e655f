// db/mongodb/manager.go
package mongodb

import (
	"context"
	"strings"

	"github.com/dalemusser/stockwatch/logging"
	"github.com/dalemusser/stockwatch/metrics"
	"github.com/dalemusser/stockwatch/mongouri"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config configures a Manager.
type Config struct {
	URI string
	// Database overrides the name in the URI path. Empty means use the
	// URI's, falling back to mongouri.DefaultDatabase.
	Database string
	Pool     PoolConfig
}

type connectFunc func(ctx context.Context, uri string, pool PoolConfig) (*mongo.Client, error)

// Manager owns the process's single MongoDB client. It connects on first
// use; concurrent first callers share one attempt, and a failed attempt
// leaves nothing cached so the next call tries again. A caller waiting
// behind a slow connect gives up when its own context ends.
type Manager struct {
	cfg     Config
	logger  *zap.Logger
	connect connectFunc

	// sem is a one-slot lock that can be abandoned on ctx.Done.
	sem    chan struct{}
	client *mongo.Client
	db     *mongo.Database
}

// NewManager returns a Manager that has not connected yet.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, logger: logger, connect: Connect, sem: make(chan struct{}, 1)}
}

func (m *Manager) lock(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) unlock() { <-m.sem }

// Database returns the connected database, connecting if needed. An
// unusable URI fails with ErrMissingURI or an *InvalidURIError before any
// network traffic. If another caller is mid-connect, Database waits for it
// or returns ctx.Err() when ctx ends first.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.unlock()

	if m.db != nil {
		return m.db, nil
	}

	uri := strings.TrimSpace(m.cfg.URI)
	if uri == "" {
		metrics.DBConnect("invalid_uri")
		return nil, ErrMissingURI
	}

	report := mongouri.Validate(uri)
	if !report.Valid {
		m.logInvalid(report)
		metrics.DBConnect("invalid_uri")
		return nil, &InvalidURIError{Report: report}
	}

	client, err := m.connect(ctx, uri, m.cfg.Pool)
	if err != nil {
		kind := ClassifyError(err)
		m.logger.Error("MongoDB connection failed",
			logging.URI("uri", uri),
			zap.String("kind", kind.String()),
			zap.Error(err),
			zap.Strings("troubleshooting", mongouri.DiagnoseAuthFailure(report, kind)),
		)
		metrics.DBConnect(kind.String())
		return nil, err
	}

	name := m.databaseName(uri)
	m.client = client
	m.db = client.Database(name)
	metrics.DBConnect("ok")
	m.logger.Info("connected to MongoDB",
		logging.URI("uri", uri),
		zap.String("database", name),
	)
	return m.db, nil
}

func (m *Manager) logInvalid(report mongouri.Report) {
	m.logger.Error("MongoDB URI validation failed",
		zap.Strings("issues", report.Messages()),
		zap.String("uri", report.SanitizedURI),
		zap.String("expected_format", mongouri.ExpectedFormat),
		zap.String("encoding", "special characters in the password must be percent-encoded: "+mongouri.EncodingHint()),
	)
}

func (m *Manager) databaseName(uri string) string {
	if m.cfg.Database != "" {
		return m.cfg.Database
	}
	if u, err := mongouri.Parse(uri); err == nil {
		return u.Database
	}
	return mongouri.DefaultDatabase
}

// Connected reports whether a client is currently held.
func (m *Manager) Connected() bool {
	_ = m.lock(context.Background())
	defer m.unlock()
	return m.client != nil
}

// Ping connects if needed and pings the server. It backs the health check.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// Close disconnects the client, if any. The Manager may connect again later.
func (m *Manager) Close(ctx context.Context) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client, m.db = nil, nil
	return err
}
