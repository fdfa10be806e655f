// mongouri/validate.go
package mongouri

import (
	"regexp"
)

// IssueKind classifies a structural problem with a connection string.
type IssueKind int

const (
	IssueParse IssueKind = iota
	IssueScheme
	IssueUsername
	IssuePassword
	IssueHostname
	IssueDatabase
	IssueEncoding
)

func (k IssueKind) String() string {
	switch k {
	case IssueParse:
		return "parse"
	case IssueScheme:
		return "missing-scheme"
	case IssueUsername:
		return "missing-username"
	case IssuePassword:
		return "missing-password"
	case IssueHostname:
		return "missing-hostname"
	case IssueDatabase:
		return "missing-database"
	case IssueEncoding:
		return "unencoded-password"
	default:
		return "unknown"
	}
}

// Issue is one human-readable problem found in a connection string.
type Issue struct {
	Kind    IssueKind
	Message string
}

func (i Issue) String() string { return i.Message }

// Issue messages. Tests and operators match on these exact strings.
const (
	MsgScheme   = "URI must start with mongodb:// or mongodb+srv://"
	MsgUsername = "Username is missing in URI"
	MsgPassword = "Password is missing in URI"
	MsgHostname = "Hostname/cluster URL is missing in URI"
	MsgDatabase = "Database name is missing from URI path"
	MsgEncoding = "Password contains special characters that need URL-encoding"

	msgInvalidPrefix = "Invalid URI format: "
)

// Mask replaces the password in SanitizedURI.
const Mask = "****"

// Report is the outcome of Validate.
type Report struct {
	Valid        bool
	Issues       []Issue
	SanitizedURI string
}

// Messages returns the issue messages in report order.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		out = append(out, is.Message)
	}
	return out
}

// Has reports whether the report contains an issue of the given kind.
func (r Report) Has(kind IssueKind) bool {
	for _, is := range r.Issues {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

func (r *Report) add(kind IssueKind, msg string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Message: msg})
}

// Validate checks raw without ever failing. A string that does not parse
// yields a single "Invalid URI format" issue; otherwise the scheme,
// username, password, and hostname checks all run, in that order, so the
// report is complete in one pass.
func Validate(raw string) Report {
	u, err := Parse(raw)
	return validate(raw, u, err)
}

func validate(raw string, u *ConnectionURI, err error) Report {
	rep := Report{SanitizedURI: sanitize(raw, u)}
	if err != nil {
		rep.add(IssueParse, msgInvalidPrefix+err.Error())
		return rep
	}

	if !u.Scheme.Recognized() {
		rep.add(IssueScheme, MsgScheme)
	}
	if u.Username == "" {
		rep.add(IssueUsername, MsgUsername)
	}
	if u.Password == "" {
		rep.add(IssuePassword, MsgPassword)
	}
	if u.Hostname == "" {
		rep.add(IssueHostname, MsgHostname)
	}

	rep.Valid = len(rep.Issues) == 0
	return rep
}

// Sanitize returns raw with its password replaced by Mask, safe for logs.
func Sanitize(raw string) string {
	u, _ := Parse(raw)
	return sanitize(raw, u)
}

// fallbackUserinfo masks strings that do not parse: from the first ':'
// after an optional "...//" prefix up to the last '@'. The scheme is not
// checked, so leading whitespace, a missing ':' before "//" or a bad
// scheme still get masked. It over-masks rather than leaving part of a
// password behind.
var fallbackUserinfo = regexp.MustCompile(`(?s)^((?:[^@]*?//)?[^:@]*):.*@`)

func sanitize(raw string, u *ConnectionURI) string {
	if u == nil {
		return fallbackUserinfo.ReplaceAllString(raw, "${1}:"+Mask+"@")
	}
	if u.rawPassword == "" {
		return raw
	}
	return string(u.Scheme) + "://" + u.rawUsername + ":" + Mask + "@" + u.rawHosts + u.rawTail
}
