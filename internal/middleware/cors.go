package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dskow/smartbee-api/internal/apierror"
)

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         string
}

// CORS returns middleware that handles Cross-Origin Resource Sharing headers.
// With a "*" origin every Origin is allowed; otherwise the request Origin is
// echoed back only when it is listed. A preflight from an unlisted origin or
// for an unlisted method gets a 400.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(cfg.AllowedOrigins, "*")
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			// Non-browser clients (curl, backend services) send no Origin
			// and skip the header work entirely.
			if origin != "" {
				switch {
				case anyOrigin:
					w.Header().Set("Access-Control-Allow-Origin", "*")
				case slices.Contains(cfg.AllowedOrigins, origin):
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				default:
					if preflight {
						apierror.WriteJSON(w, r, http.StatusBadRequest, apierror.CORSRejected, "disallowed CORS origin")
						return
					}
					next.ServeHTTP(w, r)
					return
				}
				if preflight {
					if !slices.Contains(cfg.AllowedMethods, r.Header.Get("Access-Control-Request-Method")) {
						apierror.WriteJSON(w, r, http.StatusBadRequest, apierror.CORSRejected, "disallowed CORS method")
						return
					}
					w.Header().Set("Access-Control-Allow-Methods", methods)
					w.Header().Set("Access-Control-Allow-Headers", headers)
					w.Header().Set("Access-Control-Max-Age", cfg.MaxAge)
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
