package security

import "testing"

func TestGenerateResetTokenRoundTrip(t *testing.T) {
	token, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate reset token: %v", err)
	}
	if token == "" || hash == "" {
		t.Fatalf("expected non-empty token and hash")
	}
	if token == hash {
		t.Fatalf("raw token must not equal its stored hash")
	}
	if HashResetToken(token) != hash {
		t.Fatalf("hash mismatch for generated token")
	}
	if !MatchResetToken(token, hash) {
		t.Fatalf("expected generated token to match its hash")
	}
}

func TestMatchResetTokenRejectsWrongToken(t *testing.T) {
	_, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate reset token: %v", err)
	}
	other, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate second token: %v", err)
	}
	if MatchResetToken(other, hash) {
		t.Fatalf("expected mismatched token to be rejected")
	}
	if MatchResetToken("", hash) {
		t.Fatalf("expected empty token to be rejected")
	}
}
