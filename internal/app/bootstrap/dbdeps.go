// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stockwatch/cache"
	"github.com/dalemusser/stockwatch/db/mongodb"
)

// DBDeps holds the backends the handlers share.
type DBDeps struct {
	Mongo *mongodb.Manager

	// Cache holds watchlist symbol lists and revoked session IDs.
	Cache cache.Cache
}
