// internal/app/store/users.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stockwatch/db/mongodb"
	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/dalemusser/stockwatch/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Users is the repository for the "user" collection.
type Users struct {
	db  Provider
	now func() time.Time
}

func NewUsers(db Provider) *Users {
	return &Users{db: db, now: time.Now}
}

// Create inserts u, filling ID, EmailKey and CreatedAt. The email is
// stored trimmed.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.TrimSpace(u.Email)
	u.EmailKey = text.Fold(u.Email)
	if u.EmailKey == "" {
		return errors.New("store: email is required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}

	coll, err := collection(ctx, s.db, mongodb.UsersCollection)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, u); err != nil {
		if mongodb.IsDup(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail looks a user up by folded email, so case and surrounding
// whitespace do not matter.
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	key := text.Fold(email)
	if key == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"emailKey": key})
}

func (s *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"id": id})
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	coll, err := collection(ctx, s.db, mongodb.UsersCollection)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// ListForNewsEmail returns every user that has both an email and a name.
func (s *Users) ListForNewsEmail(ctx context.Context) ([]models.Recipient, error) {
	coll, err := collection(ctx, s.db, mongodb.UsersCollection)
	if err != nil {
		return nil, err
	}

	present := bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
	filter := bson.M{"email": present, "name": present}
	opts := options.Find().SetProjection(bson.M{"_id": 0, "id": 1, "email": 1, "name": 1})

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.Recipient
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return recipients(rows), nil
}

// recipients drops rows whose email or name is blank after trimming.
func recipients(rows []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(rows))
	for _, r := range rows {
		r.Email = strings.TrimSpace(r.Email)
		r.Name = strings.TrimSpace(r.Name)
		if r.Email == "" || r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
