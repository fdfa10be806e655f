// db/mongodb/errors_test.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/dalemusser/stockwatch/mongouri"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want mongouri.ErrorKind
	}{
		{"nil", nil, mongouri.KindUnknown},
		{"auth code", mongo.CommandError{Code: 18, Message: "Authentication failed."}, mongouri.KindAuthentication},
		{"auth name", mongo.CommandError{Name: "AuthenticationFailed"}, mongouri.KindAuthentication},
		{"auth text", errors.New("auth error: sasl conversation error"), mongouri.KindAuthentication},
		{"dns", fmt.Errorf("lookup: %w", &net.DNSError{Err: "no such host", Name: "cluster0.example.net"}), mongouri.KindNetwork},
		{"enotfound", errors.New("getaddrinfo ENOTFOUND cluster0.example.net"), mongouri.KindNetwork},
		{"refused", errors.New("dial tcp 127.0.0.1:27017: connect: connection refused"), mongouri.KindNetwork},
		{"deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), mongouri.KindTimeout},
		{"selection", errors.New("server selection error: server selection timeout"), mongouri.KindTimeout},
		{"other", errors.New("boom"), mongouri.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"write exception", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, true},
		{"command", mongo.CommandError{Code: 11000}, true},
		{"wrapped", fmt.Errorf("insert: %w", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}), true},
		{"text", errors.New("E11000 duplicate key error collection: app.user"), true},
		{"other write", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121}}}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDup(tt.err); got != tt.want {
				t.Errorf("IsDup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConflictingIndexName(t *testing.T) {
	err := mongo.CommandError{
		Name:    "IndexOptionsConflict",
		Message: `An existing index has the same name as the requested index. Requested index: { v: 2 }, existing index: { v: 2, key: { emailKey: 1 }, name: "emailKey_1" }`,
	}
	name, ok := conflictingIndexName(err)
	if !ok || name != "emailKey_1" {
		t.Fatalf("got %q, %v", name, ok)
	}

	if _, ok := conflictingIndexName(mongo.CommandError{Name: "Other"}); ok {
		t.Error("unexpected match for other command error")
	}
	if _, ok := conflictingIndexName(errors.New("x")); ok {
		t.Error("unexpected match for plain error")
	}
}

func TestIndexes(t *testing.T) {
	idx := Indexes()
	if len(idx[WatchlistCollection]) != 2 {
		t.Errorf("watchlist indexes = %d, want 2", len(idx[WatchlistCollection]))
	}
	if len(idx[UsersCollection]) != 1 {
		t.Errorf("user indexes = %d, want 1", len(idx[UsersCollection]))
	}
}
