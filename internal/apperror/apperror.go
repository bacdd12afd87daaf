package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes a single violated constraint.
type FieldError struct {
	Loc  []string `json:"loc,omitempty"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError aggregates every constraint violated by a payload.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation located at loc.
func (e *ValidationError) Add(msg, errType string, loc ...string) {
	e.Errors = append(e.Errors, FieldError{Loc: loc, Msg: msg, Type: errType})
}

// Empty reports whether no violation was collected.
func (e *ValidationError) Empty() bool {
	return len(e.Errors) == 0
}

// NotFoundError lists every referenced resource that does not exist, e.g. "Category[7]".
type NotFoundError struct {
	Resources []string
}

// NotFound builds a NotFoundError with one entry per id of the given kind.
func NotFound(kind string, ids ...int64) *NotFoundError {
	err := &NotFoundError{}
	for _, id := range ids {
		err.Resources = append(err.Resources, fmt.Sprintf("%s[%d]", kind, id))
	}
	return err
}

func (e *NotFoundError) Error() string {
	return "resource not found: " + strings.Join(e.Resources, ", ")
}

// Merge appends the resources of other, which may be nil.
func (e *NotFoundError) Merge(other *NotFoundError) {
	if other == nil {
		return
	}
	e.Resources = append(e.Resources, other.Resources...)
}

// Entries renders one FieldError per missing resource.
func (e *NotFoundError) Entries() []FieldError {
	entries := make([]FieldError, 0, len(e.Resources))
	for _, r := range e.Resources {
		entries = append(entries, FieldError{Msg: "resource not found: " + r, Type: "not_found"})
	}
	return entries
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsNotFound unwraps err into a *NotFoundError.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// StatusCode maps an error to the HTTP status it is surfaced with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isValidation(err):
		return http.StatusBadRequest
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}

func isNotFound(err error) bool {
	_, ok := AsNotFound(err)
	return ok
}
