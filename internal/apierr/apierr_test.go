package apierr

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
		want    Category
	}{
		{"connection refused", 0, "Connection refused", CategoryNetwork},
		{"unknown host", 0, "Unknown HOST api.local", CategoryNetwork},
		{"bad address", 0, "cannot assign requested address", CategoryNetwork},
		{"unauthorized", 401, "", CategoryAuth},
		{"forbidden", 403, "nope", CategoryAuth},
		{"request timeout code", 408, "", CategoryTimeout},
		{"timeout in message", 0, "read TIMEOUT exceeded", CategoryTimeout},
		{"timeout beats server", 504, "gateway timeout", CategoryTimeout},
		{"server", 500, "boom", CategoryServer},
		{"service unavailable", 503, "ollama down", CategoryServer},
		{"not found", 404, "Message not found", CategoryClient},
		{"conflict", 409, "", CategoryClient},
		{"validation", 0, "Field is Required", CategoryValidation},
		{"invalid", 200, "invalid recipient", CategoryValidation},
		{"llm", 0, "LLM returned garbage", CategoryAIService},
		{"ollama", 0, "ollama model missing", CategoryAIService},
		{"bare ai is not ai-service", 0, "said hi to the aim", CategoryUnknown},
		{"network with a code is not network", 200, "network hiccup", CategoryUnknown},
		{"empty", 0, "", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.code, tt.message); got != tt.want {
				t.Fatalf("Classify(%d, %q) = %s, want %s", tt.code, tt.message, got, tt.want)
			}
		})
	}
}

func TestNamedConstructorsFixCategory(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		cat  Category
		code int
	}{
		{"network", Network("down"), CategoryNetwork, 0},
		{"network default", NetworkDefault(), CategoryNetwork, 0},
		{"timeout", Timeout("slow"), CategoryTimeout, 408},
		{"auth", Auth("expired"), CategoryAuth, 401},
		{"unauthorized", Unauthorized(), CategoryAuth, 401},
		{"ai", AIService("model missing"), CategoryAIService, 503},
		{"not found", NotFound("Email"), CategoryClient, 404},
		{"server", Server(), CategoryServer, 500},
		{"validation with address", Validation("Invalid recipient address: missing '@'"), CategoryValidation, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category() != tt.cat {
				t.Fatalf("category = %s, want %s", tt.err.Category(), tt.cat)
			}
			if tt.err.Code() != tt.code {
				t.Fatalf("code = %d, want %d", tt.err.Code(), tt.code)
			}
		})
	}

	if got := NotFound("Email").Message(); got != "Email not found" {
		t.Fatalf("NotFound message = %q", got)
	}
}

func TestUserFriendlyMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{Network("x"), "Network connection issue. Please check your internet connection."},
		{Auth("x"), "Authentication error. Please log in again."},
		{Timeout("x"), "Request timed out. The server took too long to respond."},
		{AIService("x"), "AI service issue. There was a problem with the AI suggestion service."},
		{Server(), "Server error. Please try again later."},
		{New("invalid email", 0, nil), "Invalid data. invalid email"},
		{NotFound("Email"), "Application error. Email not found"},
		{New("something odd", 0, nil), "something odd"},
		{New("", 0, nil), "An unknown error occurred."},
	}

	for _, tt := range tests {
		if got := tt.err.UserFriendlyMessage(); got != tt.want {
			t.Errorf("%v: UserFriendlyMessage() = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestDetailsAreCopied(t *testing.T) {
	details := map[string]any{"field": "to"}
	err := New("invalid", 400, details)
	details["field"] = "cc"

	if got := err.Details()["field"]; got != "to" {
		t.Fatalf("details mutated through constructor argument: %v", got)
	}

	out := err.Details()
	out["field"] = "bcc"
	if got := err.Details()["field"]; got != "to" {
		t.Fatalf("details mutated through accessor: %v", got)
	}
}

func TestWithCause(t *testing.T) {
	base := Network("connection reset")
	wrapped := base.WithCause(io.ErrUnexpectedEOF)

	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Fatal("expected cause to be reachable through errors.Is")
	}
	if base.Unwrap() != nil {
		t.Fatal("WithCause must not modify the receiver")
	}
	if !errors.Is(wrapped, NetworkDefault()) {
		t.Fatal("expected category match through errors.Is")
	}
	if errors.Is(wrapped, Unauthorized()) {
		t.Fatal("network error must not match auth")
	}

	var target *Error
	if !errors.As(wrapped, &target) || target.Category() != CategoryNetwork {
		t.Fatal("errors.As should find the *Error")
	}
	if !strings.Contains(wrapped.Error(), "connection reset") {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
}
