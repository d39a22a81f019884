package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssue(t *testing.T) {
	issuer := NewIssuer("test-secret-test-secret")

	tok, err := issuer.Issue(42, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if tok == "" {
		t.Fatal("Issue() returned empty string")
	}
}

func TestVerifyValidToken(t *testing.T) {
	issuer := NewIssuer("test-secret-test-secret")

	tok, err := issuer.Issue(42, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Verify() UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Verify() Email = %q, want %q", claims.Email, "a@x.com")
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret-test-secret")

	_, err := issuer.Verify("not-a-valid-token")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewIssuer("correct-secret-correct")

	tok, err := issuer.Issue(42, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	other := NewIssuer("wrong-secret-wrong-secret")
	_, err = other.Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret-test-secret")

	// Issue with a clock two days in the past so the 24h expiry is behind us.
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	tok, err := issuer.Issue(42, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	issuer.now = time.Now
	_, err = issuer.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	issuer := NewIssuer("test-secret-test-secret")

	// alg=none token with otherwise valid claims must not verify.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
		Email:  "a@x.com",
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	_, err = issuer.Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
}
