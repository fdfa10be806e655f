// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/stockwatch/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig applies the CORS section of coreCfg. With enable_cors
// off it is a no-op, so routers can install it unconditionally.
// Authorization is always an allowed header since the API is bearer-token based.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return passthrough
	}

	headers := coreCfg.CORS.CORSAllowedHeaders
	if !contains(headers, "Authorization") {
		headers = append(append([]string{}, headers...), "Authorization")
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   coreCfg.CORS.CORSAllowedOrigins,
		AllowedMethods:   coreCfg.CORS.CORSAllowedMethods,
		AllowedHeaders:   headers,
		ExposedHeaders:   coreCfg.CORS.CORSExposedHeaders,
		AllowCredentials: coreCfg.CORS.CORSAllowCredentials,
		MaxAge:           coreCfg.CORS.CORSMaxAge,
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if http.CanonicalHeaderKey(v) == s {
			return true
		}
	}
	return false
}
