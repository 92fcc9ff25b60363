package services

import "testing"

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("generateRefreshToken() error = %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}
	if hash != hashRefreshToken(token) {
		t.Error("returned hash does not match the token")
	}

	second, _, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("generateRefreshToken() error = %v", err)
	}
	if token == second {
		t.Error("successive tokens must differ")
	}
}

func TestHashRefreshToken_Deterministic(t *testing.T) {
	if hashRefreshToken("abc") != hashRefreshToken("abc") {
		t.Error("hash must be deterministic")
	}
	if hashRefreshToken("abc") == hashRefreshToken("abd") {
		t.Error("different tokens must hash differently")
	}
}
