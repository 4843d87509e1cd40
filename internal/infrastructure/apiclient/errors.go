package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// FieldError holds the messages reported for one form field.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldErrors is the "errors" member of the envelope, kept in the order the
// server sent it so the first entry is stable.
type FieldErrors []FieldError

func (f *FieldErrors) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		// null, or the empty array some frameworks emit for "no errors"
		*f = nil
		return nil
	}

	var out FieldErrors
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			var one string
			if err := json.Unmarshal(raw, &one); err != nil {
				return fmt.Errorf("errors.%s: %w", key, err)
			}
			msgs = []string{one}
		}
		out = append(out, FieldError{Field: key, Messages: msgs})
	}
	*f = out
	return nil
}

// First returns the first message of the first field, if any.
func (f FieldErrors) First() string {
	for _, fe := range f {
		if len(fe.Messages) > 0 {
			return fe.Messages[0]
		}
	}
	return ""
}

// For returns the first message reported for field.
func (f FieldErrors) For(field string) string {
	for _, fe := range f {
		if fe.Field == field && len(fe.Messages) > 0 {
			return fe.Messages[0]
		}
	}
	return ""
}

// APIError is a failed call to the remote API: a non-2xx status, an
// envelope with success=false, or a transport failure (Status 0).
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Errors  FieldErrors

	kind  error
	cause error
}

func (e *APIError) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.cause)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
}

func (e *APIError) Unwrap() []error {
	errs := []error{e.kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// UserMessage is the text shown to the admin: the first field error, then
// the server message, then fallback.
func (e *APIError) UserMessage(fallback string) string {
	if msg := e.Errors.First(); msg != "" {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// UserMessage extracts the admin-facing text from any error returned by the
// client, or fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.cause == nil {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}

// ValidationErrors returns the field errors carried by err, if any.
func ValidationErrors(err error) FieldErrors {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}

func classify(status int, errs FieldErrors) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusUnprocessableEntity || len(errs) > 0:
		return domain.ErrValidation
	default:
		return domain.ErrUpstream
	}
}
