package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogservice/internal/auth"
	"github.com/2beens/blogservice/internal/messages"
	"github.com/2beens/blogservice/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=blog_test

type blogService interface {
	List(ctx context.Context, page int) (*ListResult, error)
	Create(ctx context.Context, caller auth.Caller, fields Fields) (*Blog, error)
	Show(ctx context.Context, caller auth.Caller, id int) (*Blog, error)
	Update(ctx context.Context, caller auth.Caller, id int, fields Fields) (*Blog, error)
}

type Handler struct {
	service   blogService
	publicURL string
}

// NewBlogHandler creates the blog HTTP handler. publicURL is used to build the
// pagination links; when empty, links are derived from the request host.
func NewBlogHandler(service blogService, publicURL string) *Handler {
	return &Handler{
		service:   service,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/blog", handler.handleList).Methods("GET").Name("list-blogs")
	router.HandleFunc("/blog", handler.handleCreate).Methods("POST", "OPTIONS").Name("create-blog")
	router.HandleFunc("/blog/{id}", handler.handleShow).Methods("GET").Name("show-blog")
	router.HandleFunc("/blog/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-blog")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := ParsePageNumber(r.URL.Query().Get("page"))
	log.Tracef("get blogs - page %d", page)

	res, err := handler.service.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteJSON(w, NewPage(*res, handler.listPath(r)), http.StatusOK)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		log.Errorf("create blog, read request fields: %s", err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.BadRequest), http.StatusBadRequest)
		return
	}

	blog, err := handler.service.Create(r.Context(), auth.CallerFromContext(r.Context()), fields)
	if err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteJSON(w, blog, http.StatusCreated)
}

func (handler *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	id, ok := blogIDFromPath(w, r)
	if !ok {
		return
	}

	blog, err := handler.service.Show(r.Context(), auth.CallerFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteJSON(w, blog, http.StatusOK)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := blogIDFromPath(w, r)
	if !ok {
		return
	}

	fields, err := readFields(r)
	if err != nil {
		log.Errorf("update blog %d, read request fields: %s", id, err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.BadRequest), http.StatusBadRequest)
		return
	}

	blog, err := handler.service.Update(r.Context(), auth.CallerFromContext(r.Context()), id, fields)
	if err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteJSON(w, blog, http.StatusOK)
}

func (handler *Handler) listPath(r *http.Request) string {
	if handler.publicURL != "" {
		return handler.publicURL + "/blog"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/blog", scheme, r.Host)
}

// readFields reads only title, description and article, from a JSON or a form body.
// Anything else the client sends (user_id, verified, ...) is ignored.
func readFields(r *http.Request) (Fields, error) {
	var fields Fields
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return Fields{}, fmt.Errorf("unmarshal json params: %w", err)
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return Fields{}, fmt.Errorf("parse form: %w", err)
	}

	return Fields{
		Title:       r.Form.Get("title"),
		Description: r.Form.Get("description"),
		Article:     r.Form.Get("article"),
	}, nil
}

func blogIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		log.Tracef("invalid blog id: [%s]", idStr)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.BadRequest), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var persistenceErr *PersistenceError
	switch {
	case errors.As(err, &validationErr):
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.ValidationFailed, validationErr.Fields...), http.StatusBadRequest)
	case errors.Is(err, ErrBlogNotFound):
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.BlogNotFound), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.Forbidden), http.StatusForbidden)
	case errors.Is(err, ErrUnauthorized):
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.Unauthorized), http.StatusUnauthorized)
	case errors.As(err, &persistenceErr):
		// details are already logged by the service
		pkg.WriteJSON(w, messages.NewErrorResponse(persistenceErr.MessageID), http.StatusInternalServerError)
	default:
		log.Errorf("blog handler, unexpected error: %s", err)
		pkg.WriteJSON(w, messages.NewErrorResponse(messages.InternalError), http.StatusInternalServerError)
	}
}
