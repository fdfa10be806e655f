// db/mongodb/indexes.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection     = "user"
	WatchlistCollection = "watchlists"
)

// IndexDefine is an index plus whether it may be dropped and rebuilt when
// an older index with the same keys but different options is in the way.
type IndexDefine struct {
	mongo.IndexModel
	ReCreatable bool
}

// Indexes lists every index the app relies on, by collection.
func Indexes() map[string][]IndexDefine {
	return map[string][]IndexDefine{
		WatchlistCollection: {
			{IndexModel: mongo.IndexModel{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "symbol", Value: 1}},
				Options: options.Index().SetName("userId_symbol_unique").SetUnique(true),
			}, ReCreatable: true},
			{IndexModel: mongo.IndexModel{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "addedAt", Value: -1}},
				Options: options.Index().SetName("userId_addedAt"),
			}},
		},
		UsersCollection: {
			{IndexModel: mongo.IndexModel{
				Keys:    bson.D{{Key: "emailKey", Value: 1}},
				Options: options.Index().SetName("emailKey_unique").SetUnique(true),
			}, ReCreatable: true},
		},
	}
}

// EnsureIndexes creates the indexes from Indexes in db.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, defs := range Indexes() {
		if err := createIndexes(ctx, db.Collection(coll).Indexes(), defs); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

var regexpIndexName = regexp.MustCompile(`name:\s*"([^"]+)"`)

func createIndexes(ctx context.Context, view mongo.IndexView, defs []IndexDefine) error {
	var plain []mongo.IndexModel

	for _, d := range defs {
		if !d.ReCreatable {
			plain = append(plain, d.IndexModel)
			continue
		}
		_, err := view.CreateOne(ctx, d.IndexModel)
		if err == nil {
			continue
		}
		name, ok := conflictingIndexName(err)
		if !ok {
			return err
		}
		if _, err := view.DropOne(ctx, name); err != nil {
			return err
		}
		if _, err := view.CreateOne(ctx, d.IndexModel); err != nil {
			return err
		}
	}

	if len(plain) == 0 {
		return nil
	}
	_, err := view.CreateMany(ctx, plain)
	return err
}

// conflictingIndexName extracts the existing index name from an
// IndexOptionsConflict or IndexKeySpecsConflict error.
func conflictingIndexName(err error) (string, bool) {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return "", false
	}
	if ce.Name != "IndexOptionsConflict" && ce.Name != "IndexKeySpecsConflict" {
		return "", false
	}
	p := strings.Index(ce.Message, "existing index:")
	if p < 0 {
		return "", false
	}
	m := regexpIndexName.FindStringSubmatch(ce.Message[p:])
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
