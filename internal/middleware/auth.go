package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogservice/internal/auth"
	"github.com/2beens/blogservice/internal/messages"
	"github.com/2beens/blogservice/internal/telemetry/tracing"
	"github.com/2beens/blogservice/pkg"
)

const AuthTokenHeader = "X-BLOG-TOKEN"

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	Identify(ctx context.Context, token string) (auth.Caller, bool, error)
}

type authPolicy int

const (
	// token required, request rejected without a valid one
	authRequired authPolicy = iota
	// token resolved if present, anonymous otherwise
	authOptional
	// token never looked at
	authNone
)

type AuthMiddlewareHandler struct {
	loginChecker loginChecker
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(loginChecker loginChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			// misc handler:
			"/":        true,
			"/test":    true,
			"/version": true,

			// login-register:
			"/a/login":    true,
			"/a/register": true,
		},
	}
}

func (h *AuthMiddlewareHandler) policyFor(r *http.Request) authPolicy {
	if h.allowedPaths[r.URL.Path] {
		return authNone
	}

	switch {
	case r.URL.Path == "/blog" && r.Method == http.MethodGet:
		return authNone
	case strings.HasPrefix(r.URL.Path, "/blog/") && r.Method == http.MethodGet:
		// unverified blogs are visible to their owners
		return authOptional
	default:
		return authRequired
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			policy := h.policyFor(r)
			if policy == authNone {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// a non-standard req. header is set, and thus - browser makes a preflight/OPTIONS request:
			//	https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#preflighted_requests
			authToken := r.Header.Get(AuthTokenHeader)

			if authToken == "" {
				if policy == authOptional {
					span.SetStatus(codes.Ok, "anonymous")
					next.ServeHTTP(w, r)
					return
				}
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				unauthorized(w)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			caller, isLogged, err := h.loginChecker.Identify(ctx, authToken)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				span.RecordError(err)
			}
			if err != nil || !isLogged {
				if policy == authOptional {
					span.SetStatus(codes.Ok, "anonymous")
					next.ServeHTTP(w, r)
					return
				}
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				unauthorized(w)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	pkg.WriteJSON(w, messages.NewErrorResponse(messages.Unauthorized), http.StatusUnauthorized)
}
