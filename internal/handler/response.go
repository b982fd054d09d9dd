package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/careerpilot/backend/internal/contextkeys"
	"github.com/careerpilot/backend/internal/domain"
)

var validate = validator.New()

// errorBody is the standard error envelope: a short stable error string plus
// an optional actionable message for the UI.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// Error writes an error response, using AppError status codes when available.
// Anything else becomes a generic 500 without leaking internal detail.
func Error(w http.ResponseWriter, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Err != nil {
			log.Printf("request failed: %v", appErr)
		}
		JSON(w, appErr.Code, errorBody{Error: appErr.Message, Message: appErr.Detail})
		return
	}
	log.Printf("unhandled error: %v", err)
	JSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}

// DecodeValid decodes and validates a JSON request body.
func DecodeValid(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	if err := validate.Struct(v); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return domain.ErrBadRequest(validationMessage(errs))
		}
		return domain.ErrBadRequest("invalid request body")
	}
	return nil
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// CurrentUser returns the authenticated user injected by the gateway.
func CurrentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(contextkeys.User).(*domain.User)
	return user
}

// Param returns a path parameter extracted by the gateway.
func Param(r *http.Request, name string) string {
	params, _ := r.Context().Value(contextkeys.PathParams).(map[string]string)
	return params[name]
}

// ParamInt64 returns a numeric path parameter. The gateway already rejected
// non-numeric values with a 400.
func ParamInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(Param(r, name), 10, 64)
	return n
}

// Remainder returns the wildcard tail of a prefix route.
func Remainder(r *http.Request) string {
	tail, _ := r.Context().Value(contextkeys.Remainder).(string)
	return tail
}

// ParseDate parses an optional YYYY-MM-DD field, returning nil when empty.
// Formats were validated by struct tags before this is called.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
