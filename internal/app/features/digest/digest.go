// internal/app/features/digest/digest.go
// Package digest mails every user a summary of their watchlist.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stockwatch/email"
	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/dalemusser/stockwatch/metrics"
	"go.uber.org/zap"
)

// Recipients lists the users to mail.
type Recipients interface {
	ListForNewsEmail(ctx context.Context) ([]models.Recipient, error)
}

// Items loads one user's watchlist.
type Items interface {
	Items(ctx context.Context, userID string) ([]models.WatchlistItem, error)
}

// Result counts one run.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Digest struct {
	recipients   Recipients
	items        Items
	mailer       email.Mailer
	dashboardURL string
	logger       *zap.Logger
	now          func() time.Time
}

func New(r Recipients, i Items, m email.Mailer, dashboardURL string, logger *zap.Logger) *Digest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Digest{recipients: r, items: i, mailer: m, dashboardURL: dashboardURL, logger: logger, now: time.Now}
}

// Run mails each recipient their digest. A failure for one user is logged
// and counted; only failing to list recipients, or ctx ending, stops the
// run early.
func (d *Digest) Run(ctx context.Context) (Result, error) {
	var res Result

	users, err := d.recipients.ListForNewsEmail(ctx)
	if err != nil {
		return res, fmt.Errorf("list recipients: %w", err)
	}
	d.logger.Info("watchlist digest starting", zap.Int("recipients", len(users)))

	now := d.now()
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := d.sendOne(ctx, u, now); err != nil {
			res.Failed++
			metrics.DigestSend(false)
			d.logger.Warn("watchlist digest failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		res.Sent++
		metrics.DigestSend(true)
	}

	d.logger.Info("watchlist digest finished", zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	return res, nil
}

func (d *Digest) sendOne(ctx context.Context, u models.Recipient, now time.Time) error {
	items, err := d.items.Items(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	msg, err := email.WatchlistDigest(u.Email, u.Name, items, d.dashboardURL, now)
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, msg)
}
