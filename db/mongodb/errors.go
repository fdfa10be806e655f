// db/mongodb/errors.go
package mongodb

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/dalemusser/stockwatch/mongouri"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrMissingURI is returned when no connection string is configured.
	ErrMissingURI = errors.New("MONGODB_URI must be set (env or .env file)")

	// ErrInvalidURI matches any *InvalidURIError via errors.Is.
	ErrInvalidURI = errors.New("invalid MongoDB URI")
)

// InvalidURIError carries the validation report of a rejected URI. Its
// message lists the issues and never the URI itself.
type InvalidURIError struct {
	Report mongouri.Report
}

func (e *InvalidURIError) Error() string {
	return "invalid MongoDB URI format: " + strings.Join(e.Report.Messages(), ", ")
}

func (e *InvalidURIError) Unwrap() error { return ErrInvalidURI }

const codeAuthenticationFailed = 18

// ClassifyError sorts a connect or ping failure into the kinds that get
// different troubleshooting advice.
func ClassifyError(err error) mongouri.ErrorKind {
	if err == nil {
		return mongouri.KindUnknown
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == codeAuthenticationFailed || ce.Name == "AuthenticationFailed") {
		return mongouri.KindAuthentication
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authenticationfailed") ||
		strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "auth error") ||
		strings.Contains(msg, "unable to authenticate") {
		return mongouri.KindAuthentication
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return mongouri.KindNetwork
	}
	if strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "enotfound") ||
		strings.Contains(msg, "getaddrinfo") ||
		strings.Contains(msg, "connection refused") {
		return mongouri.KindNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		return mongouri.KindTimeout
	}
	return mongouri.KindUnknown
}

const codeDuplicateKey = 11000

// IsDup reports whether err is a duplicate-key error (E11000).
func IsDup(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDuplicateKey {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeDuplicateKey {
		return true
	}

	// Some proxies surface E11000 only as text.
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "e11000") || strings.Contains(s, "duplicate key")
}
