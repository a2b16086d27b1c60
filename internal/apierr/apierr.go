// Package apierr defines the closed error taxonomy used by every network
// operation in mailagent, along with the messages shown to the user for
// each category.
package apierr

import (
	"fmt"
	"maps"
	"net/http"
	"strings"
)

// Category is the coarse class of a failure. The set is closed.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryAuth       Category = "auth"
	CategoryTimeout    Category = "timeout"
	CategoryServer     Category = "server"
	CategoryClient     Category = "client"
	CategoryValidation Category = "validation"
	CategoryAIService  Category = "ai-service"
	CategoryUnknown    Category = "unknown"
)

// Categories lists every category in classification order.
func Categories() []Category {
	return []Category{
		CategoryNetwork,
		CategoryAuth,
		CategoryTimeout,
		CategoryServer,
		CategoryClient,
		CategoryValidation,
		CategoryAIService,
		CategoryUnknown,
	}
}

// Error is a classified failure. Its category is fixed when it is built.
// Code 0 means no HTTP status was received.
type Error struct {
	message  string
	code     int
	details  map[string]any
	category Category
	cause    error
}

// New builds an Error and classifies it from its code and message.
func New(message string, code int, details map[string]any) *Error {
	return &Error{
		message:  message,
		code:     code,
		details:  maps.Clone(details),
		category: Classify(code, message),
	}
}

// Newf is New with a formatted message and no details.
func Newf(code int, format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...), code, nil)
}

func newCategorized(message string, code int, category Category) *Error {
	return &Error{message: message, code: code, category: category}
}

// Network reports a connectivity failure.
func Network(message string) *Error {
	return newCategorized(message, 0, CategoryNetwork)
}

// NetworkDefault is Network with a generic message.
func NetworkDefault() *Error {
	return Network("Network connection failed")
}

// Timeout reports a request that did not complete in time.
func Timeout(message string) *Error {
	return newCategorized(message, http.StatusRequestTimeout, CategoryTimeout)
}

// TimeoutDefault is Timeout with a generic message.
func TimeoutDefault() *Error {
	return Timeout("Request timed out")
}

// Auth reports a rejected or expired login.
func Auth(message string) *Error {
	return newCategorized(message, http.StatusUnauthorized, CategoryAuth)
}

// Unauthorized is Auth with a generic message.
func Unauthorized() *Error {
	return Auth("Unauthorized access")
}

// AIService reports a failure in the reply-suggestion service.
func AIService(message string) *Error {
	return newCategorized(message, http.StatusServiceUnavailable, CategoryAIService)
}

// Validation reports input rejected before any request was made.
func Validation(message string) *Error {
	return newCategorized(message, 0, CategoryValidation)
}

// NotFound reports a missing resource of the given kind.
func NotFound(resourceType string) *Error {
	return newCategorized(resourceType+" not found", http.StatusNotFound, CategoryClient)
}

// Server reports an unspecified backend failure.
func Server() *Error {
	return newCategorized("Server error", http.StatusInternalServerError, CategoryServer)
}

// WithCause returns a copy of e that wraps cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.details = maps.Clone(e.details)
	c.cause = cause
	return &c
}

func (e *Error) Error() string {
	if e.code != 0 {
		return fmt.Sprintf("%s (%s, code %d)", e.message, e.category, e.code)
	}
	return fmt.Sprintf("%s (%s)", e.message, e.category)
}

func (e *Error) Unwrap() error { return e.cause }

// Message returns the raw message.
func (e *Error) Message() string { return e.message }

// Code returns the HTTP status code, or 0 when none was received.
func (e *Error) Code() int { return e.code }

// Category returns the error category.
func (e *Error) Category() Category { return e.category }

// Details returns a copy of the structured details, possibly nil.
func (e *Error) Details() map[string]any { return maps.Clone(e.details) }

// Is reports whether target is an *Error of the same category. This lets
// callers write errors.Is(err, apierr.Unauthorized()).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.category == e.category
}

// UserFriendlyMessage returns the sentence shown in the status bar and
// alerts for this error.
func (e *Error) UserFriendlyMessage() string {
	switch e.category {
	case CategoryNetwork:
		return "Network connection issue. Please check your internet connection."
	case CategoryAuth:
		return "Authentication error. Please log in again."
	case CategoryTimeout:
		return "Request timed out. The server took too long to respond."
	case CategoryAIService:
		return "AI service issue. There was a problem with the AI suggestion service."
	case CategoryServer:
		return "Server error. Please try again later."
	case CategoryValidation:
		if e.message != "" {
			return "Invalid data. " + e.message
		}
		return "Invalid data. Please check your input."
	case CategoryClient:
		return "Application error. " + e.message
	default:
		if e.message != "" {
			return e.message
		}
		return "An unknown error occurred."
	}
}

var (
	connectivityTerms = []string{"connect", "host", "network", "address"}
	validationTerms   = []string{"validation", "invalid", "required"}
	aiTerms           = []string{"llm", "ollama", "ai service", "ai-service", "suggestion service"}
)

// Classify maps a status code and message to a category. Rules are
// applied in order and the first match wins.
func Classify(code int, message string) Category {
	msg := strings.ToLower(message)

	switch {
	case code == 0 && containsAny(msg, connectivityTerms):
		return CategoryNetwork
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return CategoryAuth
	case code == http.StatusRequestTimeout || strings.Contains(msg, "timeout"):
		return CategoryTimeout
	case code >= 500:
		return CategoryServer
	case code >= 400 && code <= 499:
		return CategoryClient
	case containsAny(msg, validationTerms):
		return CategoryValidation
	case containsAny(msg, aiTerms):
		return CategoryAIService
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
