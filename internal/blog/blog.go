package blog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/2beens/blogservice/internal/messages"
)

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBlogNotEditable is returned by the repo when the conditional update matched no row
	ErrBlogNotEditable = errors.New("blog not editable")
)

type Blog struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Article     string    `json:"article"`
	UserID      int       `json:"user_id"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fields are the only blog attributes a client may set, both on create and on update.
type Fields struct {
	// title column is VARCHAR(255)
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Article     string `json:"article" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (f Fields) Trimmed() Fields {
	return Fields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Article:     strings.TrimSpace(f.Article),
	}
}

// Validate returns the names of the fields that failed validation, nil when all is fine.
func (f Fields) Validate() []string {
	err := validate.Struct(f.Trimmed())
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// cannot really happen for a plain struct value
		return []string{err.Error()}
	}

	failed := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		failed = append(failed, fe.Field())
	}
	return failed
}

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// PersistenceError hides the store failure from the client, which gets only the message id.
type PersistenceError struct {
	Op        string
	MessageID messages.ID
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
