package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("s3cret-passphrase")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-passphrase" {
		t.Fatal("hash must not equal plaintext")
	}

	if err := Compare(hash, "s3cret-passphrase"); err != nil {
		t.Errorf("compare with correct password: %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Error("compare with wrong password should fail")
	}
}
