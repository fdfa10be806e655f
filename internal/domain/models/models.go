// internal/domain/models/models.go
package models

import "time"

// User is an account in the "user" collection. EmailKey is the folded
// email used for case-insensitive lookups and uniqueness.
type User struct {
	ID                string    `bson:"id" json:"id"`
	Email             string    `bson:"email" json:"email"`
	EmailKey          string    `bson:"emailKey" json:"-"`
	Name              string    `bson:"name" json:"name"`
	PasswordHash      string    `bson:"passwordHash" json:"-"`
	Country           string    `bson:"country,omitempty" json:"country,omitempty"`
	InvestmentGoals   string    `bson:"investmentGoals,omitempty" json:"investmentGoals,omitempty"`
	RiskTolerance     string    `bson:"riskTolerance,omitempty" json:"riskTolerance,omitempty"`
	PreferredIndustry string    `bson:"preferredIndustry,omitempty" json:"preferredIndustry,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// Recipient is the subset of a user the watchlist digest needs.
type Recipient struct {
	ID    string `bson:"id" json:"id"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
}

// WatchlistItem is one symbol a user follows. (UserID, Symbol) is unique.
type WatchlistItem struct {
	UserID  string    `bson:"userId" json:"userId"`
	Symbol  string    `bson:"symbol" json:"symbol"`
	Company string    `bson:"company" json:"company"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
}

// DashboardItem is a watchlist row as the dashboard shows it; AddedAt is
// RFC 3339.
type DashboardItem struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	AddedAt string `json:"addedAt"`
}
