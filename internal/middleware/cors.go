package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var devOrigins = []string{
	"http://localhost:8080",
	"http://localhost:3000",
	"test",
}

// Cors lets browsers from the given origins (and the local dev ones) through.
// Requests without an Origin header are not browser cross-origin requests and pass untouched.
func Cors(allowedOrigins ...string) func(next http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, origin := range append(allowedOrigins, devOrigins...) {
		if origin = strings.TrimRight(origin, "/"); origin != "" {
			allowed[origin] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed[origin] {
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, "+AuthTokenHeader+", "+RequestIDHeader,
			)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			w.Header().Add("Vary", "Origin")

			next.ServeHTTP(w, r)
		})
	}
}
