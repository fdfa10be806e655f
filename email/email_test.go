// email/email_test.go
package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Disabled(t *testing.T) {
	s := NewSender(Config{})
	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}, TextBody: "hi"})
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestSender_BuildRejectsBadMessages(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com", FromAddress: "noreply@example.com"})

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"no recipients", Message{TextBody: "x"}, "no recipients"},
		{"no body", Message{To: []string{"a@example.com"}}, "body is empty"},
		{"bad to", Message{To: []string{"not an address"}, TextBody: "x"}, "invalid to address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.build(tt.msg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := s.build(Message{To: []string{"a@example.com"}, Subject: "s", TextBody: "t", HTMLBody: "<p>h</p>"})
	assert.NoError(t, err)
}

func TestNewSender_Defaults(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com"})
	assert.Equal(t, 587, s.cfg.Port)
	assert.Equal(t, 30*time.Second, s.cfg.Timeout)
}

func TestWelcome(t *testing.T) {
	msg, err := Welcome("ann@example.com", "Ann", &Profile{InvestmentGoals: "Growth", Country: "US"}, "https://app.example/")
	require.NoError(t, err)

	assert.Equal(t, []string{"ann@example.com"}, msg.To)
	assert.Equal(t, "Welcome to Stockwatch", msg.Subject)
	assert.Contains(t, msg.TextBody, "Hi Ann,")
	assert.Contains(t, msg.TextBody, "Goals: Growth")
	assert.Contains(t, msg.TextBody, "Country: US")
	assert.NotContains(t, msg.TextBody, "Risk tolerance")
	assert.Contains(t, msg.HTMLBody, "<li>Goals: Growth</li>")

	bare, err := Welcome("bob@example.com", "Bob", &Profile{}, "https://app.example/")
	require.NoError(t, err)
	assert.NotContains(t, bare.HTMLBody, "<ul>")
}

func TestWelcome_EscapesHTML(t *testing.T) {
	msg, err := Welcome("x@example.com", "<script>", nil, "https://app.example/")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
}

func TestWatchlistDigest(t *testing.T) {
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	items := []models.WatchlistItem{
		{Symbol: "AAPL", Company: "Apple Inc.", AddedAt: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
		{Symbol: "TSLA"},
	}

	msg, err := WatchlistDigest("ann@example.com", "Ann", items, "https://app.example/", now)
	require.NoError(t, err)

	assert.Equal(t, "Your Daily Watchlist Summary", msg.Subject)
	assert.Contains(t, msg.TextBody, "Monday, March 3")
	assert.Contains(t, msg.TextBody, "Apple Inc. (added Feb 14)")
	assert.Contains(t, msg.TextBody, "TSLA (added -)")
	assert.Equal(t, 2, strings.Count(msg.HTMLBody, "<tr><td>"))

	empty, err := WatchlistDigest("ann@example.com", "Ann", nil, "https://app.example/", now)
	require.NoError(t, err)
	assert.Contains(t, empty.TextBody, "Your watchlist is empty.")
	assert.NotContains(t, empty.HTMLBody, "<table>")
}
