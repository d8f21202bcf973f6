package security

import (
	"strings"
	"testing"
)

func TestHashAndCheckPIN(t *testing.T) {
	hash, errHash := HashPIN("1234")
	if errHash != nil {
		t.Fatalf("hash pin: %v", errHash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !CheckPIN(hash, "1234") {
		t.Fatalf("expected matching pin to verify")
	}
	if CheckPIN(hash, "4321") {
		t.Fatalf("expected wrong pin to fail")
	}
}

func TestCheckPINLegacyPlaintext(t *testing.T) {
	if !CheckPIN("1234", "1234") {
		t.Fatalf("expected legacy plaintext pin to verify by equality")
	}
	if CheckPIN("1234", "9999") {
		t.Fatalf("expected wrong legacy pin to fail")
	}
	if CheckPIN("", "") {
		t.Fatalf("expected empty stored pin to never verify")
	}
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 50; i++ {
		pin, errGen := GeneratePIN()
		if errGen != nil {
			t.Fatalf("generate pin: %v", errGen)
		}
		if len(pin) != 4 {
			t.Fatalf("expected 4-digit pin, got %q", pin)
		}
		if pin < "1000" || pin > "9999" {
			t.Fatalf("expected pin in [1000, 9999], got %q", pin)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, errHash := HashPassword("s3cret-admin")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if !CheckPassword(hash, "s3cret-admin") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "other") {
		t.Fatalf("expected wrong password to fail")
	}
}
