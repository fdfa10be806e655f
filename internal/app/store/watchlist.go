// internal/app/store/watchlist.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stockwatch/cache"
	"github.com/dalemusser/stockwatch/db/mongodb"
	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/dalemusser/stockwatch/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SymbolsTTL bounds how long a user's cached symbol list may be stale if
// an invalidation is lost (e.g. Redis briefly unreachable).
const SymbolsTTL = 5 * time.Minute

// UserFinder resolves an email to a user.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Watchlist is the repository for the "watchlists" collection. Symbol
// lists are cached per user and invalidated on every write.
type Watchlist struct {
	db     Provider
	users  UserFinder
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewWatchlist(db Provider, users UserFinder, c cache.Cache, logger *zap.Logger) *Watchlist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watchlist{db: db, users: users, cache: c, logger: logger, now: time.Now}
}

func symbolsKey(userID string) string { return "watchlist:symbols:" + userID }

// normalizeSymbol trims and upper-cases a ticker.
func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Symbols returns the user's symbols, most recently added first.
func (s *Watchlist) Symbols(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return []string{}, nil
	}

	key := symbolsKey(userID)
	if cached, err := cache.GetJSON[[]string](ctx, s.cache, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("watchlist cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(items))
	for _, it := range items {
		symbols = append(symbols, it.Symbol)
	}

	if err := cache.SetJSON(ctx, s.cache, key, symbols, SymbolsTTL); err != nil {
		s.logger.Warn("watchlist cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return symbols, nil
}

// SymbolsByEmail never fails: an unknown user or any lookup error yields
// an empty list, and errors are logged.
func (s *Watchlist) SymbolsByEmail(ctx context.Context, email string) []string {
	if strings.TrimSpace(email) == "" {
		return []string{}
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("watchlist symbols by email failed", zap.Error(err))
		}
		return []string{}
	}
	symbols, err := s.Symbols(ctx, u.ID)
	if err != nil {
		s.logger.Error("watchlist symbols by email failed", zap.String("user_id", u.ID), zap.Error(err))
		return []string{}
	}
	return symbols
}

// Items returns the user's watchlist sorted by AddedAt, newest first.
func (s *Watchlist) Items(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	if userID == "" {
		return []models.WatchlistItem{}, nil
	}
	coll, err := collection(ctx, s.db, mongodb.WatchlistCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}})
	cur, err := coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find watchlist: %w", err)
	}
	defer cur.Close(ctx)

	items := []models.WatchlistItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	return items, nil
}

// Dashboard returns Items shaped for display.
func (s *Watchlist) Dashboard(ctx context.Context, userID string) ([]models.DashboardItem, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDashboard(items, s.now()), nil
}

// toDashboard formats AddedAt as RFC 3339 (UTC, milliseconds); a zero time
// is shown as now. A blank company falls back to the symbol.
func toDashboard(items []models.WatchlistItem, now time.Time) []models.DashboardItem {
	out := make([]models.DashboardItem, 0, len(items))
	for _, it := range items {
		at := it.AddedAt
		if at.IsZero() {
			at = now
		}
		out = append(out, models.DashboardItem{
			Symbol:  it.Symbol,
			Company: companyOrSymbol(it.Company, it.Symbol),
			AddedAt: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return out
}

func companyOrSymbol(company, symbol string) string {
	if c := strings.TrimSpace(company); c != "" {
		return c
	}
	return symbol
}

// Contains reports whether symbol is on the user's watchlist.
func (s *Watchlist) Contains(ctx context.Context, userID, symbol string) (bool, error) {
	symbol = normalizeSymbol(symbol)
	if userID == "" || symbol == "" {
		return false, nil
	}
	coll, err := collection(ctx, s.db, mongodb.WatchlistCollection)
	if err != nil {
		return false, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{"userId": userID, "symbol": symbol}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count watchlist: %w", err)
	}
	return n > 0, nil
}

// Add upserts symbol for the user. Adding an existing symbol updates its
// company and moves it to the top.
func (s *Watchlist) Add(ctx context.Context, userID, symbol, company string) error {
	symbol = normalizeSymbol(symbol)
	if userID == "" || symbol == "" {
		return ErrMissingParams
	}
	coll, err := collection(ctx, s.db, mongodb.WatchlistCollection)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"company": companyOrSymbol(company, symbol),
		"addedAt": s.now().UTC(),
	}}
	_, err = coll.UpdateOne(ctx,
		bson.M{"userId": userID, "symbol": symbol},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert watchlist: %w", err)
	}
	metrics.WatchlistOp("add")
	s.invalidate(ctx, userID)
	return nil
}

// Remove deletes symbol from the user's watchlist. Removing a symbol that
// is not there is not an error.
func (s *Watchlist) Remove(ctx context.Context, userID, symbol string) error {
	symbol = normalizeSymbol(symbol)
	if userID == "" || symbol == "" {
		return ErrMissingParams
	}
	coll, err := collection(ctx, s.db, mongodb.WatchlistCollection)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"userId": userID, "symbol": symbol}); err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	metrics.WatchlistOp("remove")
	s.invalidate(ctx, userID)
	return nil
}

func (s *Watchlist) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, symbolsKey(userID)); err != nil {
		s.logger.Warn("watchlist cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
