package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("VerifyPassword(correct password) = false, want true")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyPassword("incorrect guess", hash)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("VerifyPassword(wrong password) = true, want false")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical, want distinct salts")
	}
}

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(hash, "$") != 1 {
		t.Errorf("hash = %q, want salt$hash format", hash)
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []string{"", "no-separator", "a$b$c", "!!!$###"}
	for _, encoded := range tests {
		if _, err := VerifyPassword("pw", encoded); err == nil {
			t.Errorf("VerifyPassword(%q) = nil error, want failure", encoded)
		}
	}
}
