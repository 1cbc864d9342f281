package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type (
	// APIError is the wire-format error detail carried under the "error"
	// key of every non-2xx response body.
	APIError struct {
		Name    string `json:"name"`
		Value   int    `json:"value"`
		Details string `json:"details"`
	}

	// ErrorEnvelope is the body of every non-2xx response.
	ErrorEnvelope struct {
		Error APIError `json:"error"`
	}
)

// NewErrorEnvelope builds the response body for a status code and a
// human-readable details string. The name is the canonical status text.
func NewErrorEnvelope(status int, details string) ErrorEnvelope {
	return ErrorEnvelope{
		Error: APIError{
			Name:    http.StatusText(status),
			Value:   status,
			Details: details,
		},
	}
}

// ValidationEnvelope flattens a validator.ValidationErrors into the
// standard envelope, keeping the first offending field in the details.
func ValidationEnvelope(err error) ErrorEnvelope {
	validationErrors, ok := err.(validator.ValidationErrors)
	if ok && len(validationErrors) > 0 {
		fieldError := validationErrors[0]
		return NewErrorEnvelope(http.StatusBadRequest, fmt.Sprintf(
			"%s failed validation while checking condition: %s",
			fieldError.Field(), fieldError.Tag(),
		))
	}

	return NewErrorEnvelope(http.StatusBadRequest, "validation error")
}
