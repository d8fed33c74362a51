package capability

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	m, err := NewMinter("key1", "secret1", time.Minute)
	if err != nil {
		t.Fatalf("NewMinter: %v", err)
	}

	md := Metadata{
		ParticipantID:  "p-1",
		DisplayName:    "Alice",
		SpeaksLanguage: "en",
		HearsLanguage:  "ar",
		RoomCode:       "ABC234",
	}
	raw, err := m.Mint("call-ABC234", "user-42", md)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Errorf("subject = %q, want user-42", claims.Subject)
	}
	if claims.SessionName != "call-ABC234" {
		t.Errorf("session = %q, want call-ABC234", claims.SessionName)
	}
	if claims.Metadata != md {
		t.Errorf("metadata = %+v, want %+v", claims.Metadata, md)
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	m1, _ := NewMinter("key1", "secret1", time.Minute)
	m2, _ := NewMinter("key1", "other", time.Minute)

	raw, err := m1.Mint("call-XYZ789", "guest_abc", Metadata{})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := m2.Parse(raw); err == nil {
		t.Fatal("expected verification failure with the wrong secret")
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	m, _ := NewMinter("key1", "secret1", time.Minute)
	// NewMinter clamps non-positive TTLs, so force expiry directly
	m.ttl = -time.Minute
	raw, err := m.Mint("call-XYZ789", "user-1", Metadata{})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestNewMinter_RequiresCredentials(t *testing.T) {
	if _, err := NewMinter("", "secret", time.Minute); err != ErrNoCredentials {
		t.Fatalf("err = %v, want ErrNoCredentials", err)
	}
	if _, err := NewMinter("key", "", time.Minute); err != ErrNoCredentials {
		t.Fatalf("err = %v, want ErrNoCredentials", err)
	}
}
