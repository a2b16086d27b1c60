package transport

import (
	"testing"
	"time"

	"github.com/nhle/mailagent/internal/config"
)

func TestRequestBuilderDoesNotMutate(t *testing.T) {
	base := Get("/emails")
	withAuth := base.WithHeader("Authorization", "Bearer x").WithTimeout(time.Second)

	if base.Header().Get("Authorization") != "" {
		t.Fatal("WithHeader modified the receiver")
	}
	if base.Timeout() != 0 {
		t.Fatal("WithTimeout modified the receiver")
	}
	if withAuth.Header().Get("Accept") != "application/json" {
		t.Fatal("default Accept header lost")
	}

	h := withAuth.Header()
	h.Set("Authorization", "changed")
	if withAuth.Header().Get("Authorization") != "Bearer x" {
		t.Fatal("Header() exposed internal state")
	}

	var zero Request
	if zero.WithHeader("X", "1").Header().Get("X") != "1" {
		t.Fatal("WithHeader on zero Request")
	}
}

func TestNewRetryPolicyDefaults(t *testing.T) {
	p := NewRetryPolicy(0, -1, nil)
	if p.MaxAttempts != 3 || p.RetryDelay != 500*time.Millisecond {
		t.Fatalf("policy = %+v", p)
	}
	for _, code := range []int{408, 429, 503, 504} {
		if !p.Retryable(code) {
			t.Fatalf("%d should be retryable", code)
		}
	}
	if p.Retryable(500) || p.Retryable(404) {
		t.Fatal("500 and 404 are not retryable by default")
	}

	custom := NewRetryPolicy(5, time.Second, []int{502})
	if custom.MaxAttempts != 5 || !custom.Retryable(502) || custom.Retryable(503) {
		t.Fatalf("custom policy = %+v", custom)
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		message string
		code    int
	}{
		{"empty body", Response{StatusCode: 502}, "Received HTTP status code 502", 502},
		{"envelope", Response{StatusCode: 404, Body: `{"error":"Email not found","code":404}`}, "Email not found", 404},
		{"error only", Response{StatusCode: 400, Body: `{"error":"Missing required field: to"}`}, "Missing required field: to", 400},
		{"plain text", Response{StatusCode: 500, Body: "Internal Server Error"}, "Internal Server Error", 500},
		{"other json", Response{StatusCode: 500, Body: `{"message":"x"}`}, `{"message":"x"}`, 500},
		{"string code", Response{StatusCode: 429, Body: `{"error":"quota","code":"E42"}`}, "quota", 429},
		{"odd details", Response{StatusCode: 400, Body: `{"error":"bad","code":400,"details":"x"}`}, "bad", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseErrorResponse(tt.resp)
			if err.Message() != tt.message || err.Code() != tt.code {
				t.Fatalf("got %q/%d, want %q/%d", err.Message(), err.Code(), tt.message, tt.code)
			}
			if tt.name == "odd details" && err.Details() != nil {
				t.Fatalf("details = %v, want nil", err.Details())
			}
		})
	}
}

func TestHasStructuredError(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"error":"busy","code":503}`, true},
		{`{"error":"busy"}`, false},
		{`{"error":"quota","code":"E42"}`, false},
		{`{"error":"busy","code":null}`, false},
		{`{"error":"busy","code":5.5}`, false},
		{`{"error":null,"code":503}`, false},
		{`{"code":503}`, false},
		{`["error","code"]`, false},
		{`the "error" and "code" words`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := HasStructuredError(tt.body); got != tt.want {
			t.Errorf("HasStructuredError(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.APIConfig{
		MaxAttempts:          5,
		RetryDelayMs:         250,
		RetryableStatusCodes: []int{502},
	})
	if p.MaxAttempts != 5 || p.RetryDelay != 250*time.Millisecond {
		t.Fatalf("policy = %+v", p)
	}
	if !p.Retryable(502) || p.Retryable(503) {
		t.Fatalf("retryable set = %v", p.RetryableStatusCodes)
	}

	if got := PolicyFromConfig(config.APIConfig{}); got.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("zero config should fall back to defaults, got %+v", got)
	}
}
