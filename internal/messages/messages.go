// Package messages holds the symbolic message ids returned to API clients,
// together with their default English text. Clients are expected to localize by id.
package messages

type ID string

const (
	BlogNotCreated   ID = "blog.notCreated"
	BlogNotUpdated   ID = "blog.notUpdated"
	BlogNotFound     ID = "blog.notFound"
	Forbidden        ID = "Forbidden"
	ValidationFailed ID = "validation.failed"
	Unauthorized     ID = "Unauthorized"
	InternalError    ID = "internalError"
	BadRequest       ID = "badRequest"
	UsernameTaken    ID = "auth.usernameTaken"
	TooManyRequests  ID = "tooManyRequests"
	NotFound         ID = "notFound"
)

var defaultTexts = map[ID]string{
	BlogNotCreated:   "The blog could not be created.",
	BlogNotUpdated:   "The blog could not be updated.",
	BlogNotFound:     "Blog not found.",
	Forbidden:        "You are not allowed to perform this action.",
	ValidationFailed: "The given data was invalid.",
	Unauthorized:     "Unauthenticated.",
	InternalError:    "Internal server error.",
	BadRequest:       "Bad request.",
	UsernameTaken:    "The username has already been taken.",
	TooManyRequests:  "Too many requests.",
	NotFound:         "Not found.",
}

// Text returns the default rendering of the message id, or the id itself when it is unknown.
func Text(id ID) string {
	if text, ok := defaultTexts[id]; ok {
		return text
	}
	return string(id)
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	MessageID ID       `json:"message_id"`
	Message   string   `json:"message"`
	Fields    []string `json:"fields,omitempty"`
}

func NewErrorResponse(id ID, fields ...string) ErrorResponse {
	return ErrorResponse{
		MessageID: id,
		Message:   Text(id),
		Fields:    fields,
	}
}
