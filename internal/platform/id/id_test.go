package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func decode(t *testing.T, id string) uuid.UUID {
	t.Helper()
	raw, err := encoding.DecodeString(strings.ToUpper(id))
	if err != nil {
		t.Fatalf("decode %q: %v", id, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("uuid from %d bytes: %v", len(raw), err)
	}
	return u
}

func TestNewIDIsLowercaseBase32(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(id) != 26 {
		t.Fatalf("expected 26-character id, got %d: %q", len(id), id)
	}
	if strings.ContainsAny(id, "=ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		t.Fatalf("expected unpadded lowercase id, got %q", id)
	}
}

func TestNewIDRoundTripsToRandomUUID(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	u := decode(t, id)
	if u.Version() != 4 {
		t.Fatalf("version = %d, want 4", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Fatalf("variant = %s, want %s", u.Variant(), uuid.RFC4122)
	}
	if got := strings.ToLower(encoding.EncodeToString(u[:])); got != id {
		t.Fatalf("re-encoded %q, want %q", got, id)
	}
}

func TestNewIDDoesNotRepeat(t *testing.T) {
	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d calls", id, i)
		}
		seen[id] = struct{}{}
	}
}
