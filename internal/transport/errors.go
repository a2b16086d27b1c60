package transport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nhle/mailagent/internal/apierr"
)

// errorEnvelope is the body the backend sends with every handled failure:
// {"error": "...", "code": 404, "details": {...}}. Code and details are
// kept raw so that a malformed value does not hide the message.
type errorEnvelope struct {
	Error   *string         `json:"error"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}

func decodeEnvelope(body string) (errorEnvelope, bool) {
	var env errorEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return errorEnvelope{}, false
	}
	return env, env.Error != nil
}

// intCode returns the envelope code when it is a JSON integer.
func (e errorEnvelope) intCode() (int, bool) {
	if len(e.Code) == 0 || string(e.Code) == "null" {
		return 0, false
	}
	var code int
	if err := json.Unmarshal(e.Code, &code); err != nil {
		return 0, false
	}
	return code, true
}

// details returns the envelope details when they are a JSON object.
func (e errorEnvelope) details() map[string]any {
	if len(e.Details) == 0 {
		return nil
	}
	var d map[string]any
	if err := json.Unmarshal(e.Details, &d); err != nil {
		return nil
	}
	return d
}

// HasStructuredError reports whether body is a backend error envelope: a
// JSON object with a string "error" and an integer "code". Such a
// response is final and is never retried.
func HasStructuredError(body string) bool {
	env, ok := decodeEnvelope(body)
	if !ok {
		return false
	}
	_, isInt := env.intCode()
	return isInt
}

// ParseErrorResponse turns a non-success response into a classified
// error. The message comes from the envelope's "error" field when
// present, otherwise from the raw body.
func ParseErrorResponse(resp Response) *apierr.Error {
	body := strings.TrimSpace(resp.Body)
	if body == "" {
		return apierr.New(
			fmt.Sprintf("Received HTTP status code %d", resp.StatusCode),
			resp.StatusCode,
			nil,
		)
	}

	if env, ok := decodeEnvelope(body); ok {
		return apierr.New(*env.Error, resp.StatusCode, env.details())
	}

	return apierr.New(body, resp.StatusCode, nil)
}
