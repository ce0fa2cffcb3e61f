package misc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogservice/internal/auth"
	"github.com/2beens/blogservice/internal/messages"
	"github.com/2beens/blogservice/internal/middleware"
	"github.com/2beens/blogservice/internal/telemetry/metrics"
	"github.com/2beens/blogservice/internal/telemetry/tracing"
	"github.com/2beens/blogservice/pkg"
)

type sessionService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type usersRepo interface {
	Add(ctx context.Context, username, passwordHash string) (*auth.User, error)
	GetByUsername(ctx context.Context, username string) (*auth.User, error)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registration struct {
	Username string `validate:"required,min=3,max=100"`
	// bcrypt only looks at the first 72 bytes
	Password string `validate:"required,min=8,max=72"`
}

type login struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type Handler struct {
	versionInfo    string
	authService    sessionService
	usersRepo      usersRepo
	metricsManager *metrics.Manager
	validate       *validator.Validate
}

func NewHandler(
	versionInfo string,
	authService sessionService,
	usersRepo usersRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		versionInfo:    versionInfo,
		authService:    authService,
		usersRepo:      usersRepo,
		metricsManager: metricsManager,
		validate:       validator.New(),
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
	trustProxyHeaders bool,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/test", handler.handleTest).Methods("GET").Name("test")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	loginSubrouter.
		HandleFunc("/register", handler.handleRegister).
		Methods("POST", "OPTIONS").Name("register")

	// rate limit the /a/* endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "auth", loginRateLimitAllowedPerMin, trustProxyHeaders, handler.metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleTest(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, map[string]string{"message": "hello world"}, http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) readCredentials(r *http.Request, strict bool) (credentials, error) {
	var creds credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return credentials{}, fmt.Errorf("unmarshal json params: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return credentials{}, fmt.Errorf("parse form: %w", err)
		}
		creds = credentials{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}
	creds.Username = strings.TrimSpace(creds.Username)

	if strict {
		return creds, handler.validate.Struct(registration(creds))
	}
	// length rules only apply to new accounts
	return creds, handler.validate.Struct(login(creds))
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	creds, err := handler.readCredentials(r, false)
	if err != nil {
		log.Debugf("login, invalid credentials request: %s", err)
		writeCredentialsError(w, err)
		return
	}

	user, err := handler.usersRepo.GetByUsername(ctx, creds.Username)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		log.Errorf("login, get user: %s", err)
		span.RecordError(err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
		return
	}
	if user == nil || !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		log.Tracef("failed login attempt for user: %s", creds.Username)
		handler.countLogin("failed")
		span.SetStatus(codes.Error, "wrong-credentials")
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.Unauthorized), http.StatusUnauthorized)
		return
	}

	token, err := handler.authService.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		span.RecordError(err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
		return
	}

	handler.countLogin("ok")
	span.SetAttributes(attribute.Int("user.id", user.ID))
	log.Tracef("new login success for user %d", user.ID)
	pkg.WriteJSON(w, map[string]string{"token": token}, http.StatusOK)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(middleware.AuthTokenHeader)
	if authToken == "" {
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.Unauthorized), http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout => %s: %s", r.URL.Path, err)
		span.RecordError(err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.Unauthorized), http.StatusUnauthorized)
		return
	}

	log.Tracef("logout for user %d success", auth.CallerFromContext(ctx).UserID)
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	creds, err := handler.readCredentials(r, true)
	if err != nil {
		log.Debugf("register, invalid credentials request: %s", err)
		writeCredentialsError(w, err)
		return
	}

	passwordHash, err := pkg.HashPassword(creds.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
		return
	}

	user, err := handler.usersRepo.Add(ctx, creds.Username, passwordHash)
	if errors.Is(err, auth.ErrUsernameTaken) {
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.UsernameTaken, "username"), http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("register, add user: %s", err)
		span.RecordError(err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	log.Debugf("new user registered: %d", user.ID)
	pkg.WriteJSON(w, user, http.StatusCreated)
}

func (handler *Handler) countLogin(result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterLogins.WithLabelValues(result).Inc()
	}
}

func writeCredentialsError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.BadRequest), http.StatusBadRequest)
		return
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	pkg.WriteJSON(w, messages.NewErrorResponse(messages.ValidationFailed, fields...), http.StatusBadRequest)
}
