// internal/app/store/store.go
// Package store holds the MongoDB-backed repositories for users and
// watchlists.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/stockwatch/db/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrMissingParams is returned by watchlist writes with a blank user
	// ID or symbol.
	ErrMissingParams = errors.New("Missing watchlist parameters")

	// ErrEmailTaken is returned by Users.Create when the folded email
	// already exists.
	ErrEmailTaken = errors.New("store: email already registered")
)

// Provider hands out the connected database. *mongodb.Manager satisfies
// it; repositories ask on every call so a failed first connect is retried.
type Provider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

var _ Provider = (*mongodb.Manager)(nil)

func collection(ctx context.Context, p Provider, name string) (*mongo.Collection, error) {
	db, err := p.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return db.Collection(name), nil
}
