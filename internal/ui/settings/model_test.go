package settings

import (
	"testing"

	"github.com/nhle/mailagent/internal/backend"
)

func TestStartAndConfigRoundTrip(t *testing.T) {
	m := New(80, 30)
	if m.Active() {
		t.Fatal("form should not be active before Start")
	}

	var in backend.ConfigData
	in.Ollama.APIBaseURL = "http://localhost:11434"
	in.Ollama.ModelName = "llama3"
	in.App.MaxEmailsFetch = 25
	in.User.Signature = "Bob"

	m.Start(in)
	if !m.Active() {
		t.Fatal("form should be active")
	}
	if got := m.Config(); got != in {
		t.Fatalf("Config() = %+v, want %+v", got, in)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		in      string
		wantErr bool
	}{
		{"url ok", validateURL, "http://localhost:11434", false},
		{"url no scheme", validateURL, "localhost", true},
		{"url empty", validateURL, "", true},
		{"positive ok", validatePositive, "20", false},
		{"positive empty", validatePositive, "", false},
		{"positive zero", validatePositive, "0", true},
		{"positive text", validatePositive, "ten", true},
		{"required", validateRequired("Model"), " ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(tt.in); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
