// logging/fields.go
package logging

import (
	"strconv"

	"github.com/dalemusser/stockwatch/mongouri"
	"go.uber.org/zap"
)

// Secret logs only whether a secret is set and how long it is.
func Secret(key, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}
	return zap.String(key, mongouri.Mask+" ("+strconv.Itoa(len(value))+" chars)")
}

// URI logs a connection string with its password masked. Strings that do
// not parse are masked too.
func URI(key, uri string) zap.Field {
	return zap.String(key, mongouri.Sanitize(uri))
}
