package token

import "testing"

func TestGenerateRandomToken(t *testing.T) {
	first, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if first == "" || second == "" {
		t.Fatal("tokens should not be empty")
	}
	if first == second {
		t.Error("tokens should be unique")
	}
}

func TestHashSHA256Deterministic(t *testing.T) {
	raw := "some-refresh-token"
	if HashSHA256(raw) != HashSHA256(raw) {
		t.Error("same input should hash identically")
	}
	if HashSHA256(raw) == HashSHA256(raw+"x") {
		t.Error("different inputs should not collide")
	}
	if len(HashSHA256(raw)) != 64 {
		t.Errorf("hex sha256 length = %d, want 64", len(HashSHA256(raw)))
	}
}
