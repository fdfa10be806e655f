// mongouri/build.go
package mongouri

import (
	"errors"
	"strings"
)

var (
	ErrUsernameRequired = errors.New("mongouri: username is required")
	ErrPasswordRequired = errors.New("mongouri: password is required")
	ErrHostRequired     = errors.New("mongouri: hostname is required")
)

// BuildOptions are the parts of a connection string to assemble.
type BuildOptions struct {
	Scheme   Scheme // default SchemeSRV
	Username string
	Password string
	Host     string
	Database string // default DefaultDatabase
}

// Build assembles a connection string from raw (unencoded) credentials.
// Username and password are encoded with EncodeSecret, and the recommended
// retryWrites=true&w=majority options are appended.
func Build(opts BuildOptions) (string, error) {
	user := strings.TrimSpace(opts.Username)
	host := strings.TrimSpace(opts.Host)
	db := strings.TrimSpace(opts.Database)

	switch {
	case user == "":
		return "", ErrUsernameRequired
	case opts.Password == "":
		return "", ErrPasswordRequired
	case host == "":
		return "", ErrHostRequired
	}

	scheme := opts.Scheme
	if scheme == "" {
		scheme = SchemeSRV
	}
	if db == "" {
		db = DefaultDatabase
	}

	var b strings.Builder
	b.WriteString(string(scheme))
	b.WriteString("://")
	b.WriteString(EncodeSecret(user))
	b.WriteByte(':')
	b.WriteString(EncodeSecret(opts.Password))
	b.WriteByte('@')
	b.WriteString(host)
	b.WriteByte('/')
	b.WriteString(EncodeSecret(db))
	b.WriteString("?retryWrites=true&w=majority")
	return b.String(), nil
}
