// internal/app/bootstrap/listeners.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/stockwatch/email"
	"github.com/dalemusser/stockwatch/internal/app/features/auth"
	"go.uber.org/zap"
)

const welcomeTimeout = 30 * time.Second

// welcomeListener mails the welcome email. A failure is logged and does
// not affect the sign-up.
func welcomeListener(m email.Mailer, appURL string, logger *zap.Logger) auth.Listener {
	return func(ctx context.Context, ev auth.UserCreated) {
		ctx, cancel := context.WithTimeout(ctx, welcomeTimeout)
		defer cancel()

		u := ev.User
		msg, err := email.Welcome(u.Email, u.Name, &email.Profile{
			Country:           u.Country,
			InvestmentGoals:   u.InvestmentGoals,
			RiskTolerance:     u.RiskTolerance,
			PreferredIndustry: u.PreferredIndustry,
		}, appURL)
		if err == nil {
			err = m.Send(ctx, msg)
		}
		if err != nil {
			logger.Warn("welcome email failed", zap.String("user_id", u.ID), zap.Error(err))
			return
		}
		logger.Info("welcome email sent", zap.String("user_id", u.ID))
	}
}
