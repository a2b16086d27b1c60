package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	if _, err := s.LoadAPIKey(BackendService); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAPIKey on empty ring = %v", err)
	}

	if err := s.SaveAPIKey(BackendService, "t0k3n"); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}
	if err := s.SaveAPIKey("ollama", "other"); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}

	got, err := s.LoadAPIKey(BackendService)
	if err != nil || got != "t0k3n" {
		t.Fatalf("LoadAPIKey = %q, %v", got, err)
	}

	if err := s.RemoveAPIKey(BackendService); err != nil {
		t.Fatalf("RemoveAPIKey: %v", err)
	}
	if _, err := s.LoadAPIKey(BackendService); !errors.Is(err, ErrNotFound) {
		t.Fatalf("key still present after remove: %v", err)
	}
	if err := s.RemoveAPIKey(BackendService); err != nil {
		t.Fatalf("second RemoveAPIKey: %v", err)
	}
	if got, _ := s.LoadAPIKey("ollama"); got != "other" {
		t.Fatalf("unrelated key lost: %q", got)
	}
}

func TestSaveAPIKeyNeedsService(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))
	if err := s.SaveAPIKey("", "x"); err == nil {
		t.Fatal("expected error for empty service")
	}
}
