package instagram

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies upstream failures into the stable categories the
// API layer maps onto HTTP statuses.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeRateLimited   ErrorType = "rate_limited"
	ErrorTypeLoginRequired ErrorType = "login_required"
	ErrorTypePrivate       ErrorType = "private"
	ErrorTypeConnection    ErrorType = "connection"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a classified upstream failure. Message keeps the raw upstream
// text for connection and unknown errors so callers can surface it.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("instagram %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// rateLimitPhrase is the cooldown text Instagram returns when throttling.
const rateLimitPhrase = "Please wait a few minutes before you try again"

// IsType reports whether err is an upstream Error of the given type.
func IsType(err error, t ErrorType) bool {
	var igErr *Error
	return errors.As(err, &igErr) && igErr.Type == t
}

// classifyMessage applies the text-based classification rules, in priority
// order, to a raw upstream error message. Status-based rules (404 and
// explicit 429) are applied earlier, by checkResponseStatus.
func classifyMessage(msg string, code int) *Error {
	if strings.Contains(msg, rateLimitPhrase) {
		return &Error{Type: ErrorTypeRateLimited, Message: msg, Code: code}
	}
	if strings.Contains(strings.ToLower(msg), "login_required") {
		return &Error{Type: ErrorTypeLoginRequired, Message: msg, Code: code}
	}
	return nil
}

// classify wraps any non-classified error from an upstream call. Errors
// already carrying a type pass through unchanged.
func classify(err error) *Error {
	var igErr *Error
	if errors.As(err, &igErr) {
		return igErr
	}
	if e := classifyMessage(err.Error(), 0); e != nil {
		return e
	}
	return &Error{Type: ErrorTypeConnection, Message: err.Error(), Code: 0}
}
