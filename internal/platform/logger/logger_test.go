package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecretsAndHashesIDs(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"email", "a@example.com",
		"access_token", "abc",
		"user_id", "2b1b3f0e-0000-0000-0000-000000000001",
		"day", 3,
	})
	if len(kv) != 8 {
		t.Fatalf("unexpected kv length: %d", len(kv))
	}
	if kv[1] != "[REDACTED]" {
		t.Fatalf("email not redacted: %v", kv[1])
	}
	if kv[3] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", kv[3])
	}
	hashed, ok := kv[5].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id not hashed: %v", kv[5])
	}
	if kv[7] != 3 {
		t.Fatalf("plain value altered: %v", kv[7])
	}
}

func TestSanitizeKeepsOddTrailingKey(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"day", 1, "dangling"})
	if len(kv) != 3 || kv[2] != "dangling" {
		t.Fatalf("unexpected kv: %v", kv)
	}
}

func TestSanitizeRedactsJWTLookingValues(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	kv := sanitizeKVs([]interface{}{"detail", jwt})
	if kv[1] != "[REDACTED]" {
		t.Fatalf("jwt-like value not redacted: %v", kv[1])
	}
}
