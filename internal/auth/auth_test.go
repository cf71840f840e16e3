package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: 4}
	digest, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "correct horse" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !h.Verify("correct horse", digest) {
		t.Error("expected correct password to verify")
	}
	if h.Verify("wrong horse", digest) {
		t.Error("expected wrong password to fail")
	}
}

func TestArgon2Hasher(t *testing.T) {
	t.Parallel()

	var h Argon2Hasher
	d1, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	d2, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !strings.HasPrefix(d1, "$argon2id$v=19$m=65536,t=3,p=4$") {
		t.Errorf("unexpected PHC format: %s", d1)
	}
	if d1 == d2 {
		t.Error("same password should produce different digests due to random salt")
	}
	if !h.Verify("the_same_password", d1) || !h.Verify("the_same_password", d2) {
		t.Error("both digests should verify")
	}
	if h.Verify("other", d1) {
		t.Error("wrong password should not verify")
	}
	if h.Verify("the_same_password", "$argon2id$broken") {
		t.Error("malformed digest should not verify")
	}

	emptyHash := d1[:strings.LastIndex(d1, "$")+1]
	if h.Verify("anything", emptyHash) || h.Verify("", emptyHash) {
		t.Error("digest with an empty hash segment should never verify")
	}
}

func TestMultiHasherVerifiesEitherAlgorithm(t *testing.T) {
	t.Parallel()

	bcryptDigest, _ := BcryptHasher{Cost: 4}.Hash("pw-123456")
	argonDigest, _ := Argon2Hasher{}.Hash("pw-123456")

	for _, alg := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		h, err := NewHasher(alg, 4)
		if err != nil {
			t.Fatalf("NewHasher(%s): %v", alg, err)
		}
		if !h.Verify("pw-123456", bcryptDigest) {
			t.Errorf("%s hasher failed to verify bcrypt digest", alg)
		}
		if !h.Verify("pw-123456", argonDigest) {
			t.Errorf("%s hasher failed to verify argon2id digest", alg)
		}
	}

	h, _ := NewHasher(AlgorithmArgon2id, 0)
	digest, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Errorf("argon2id hasher produced %q", digest)
	}

	if _, err := NewHasher("md5", 0); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestTokenSubjectAndExpiry(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", 0)
	before := time.Now()
	tok, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wantExp := before.Add(time.Hour)
	if d := tok.ExpiresAt.Sub(wantExp); d < -2*time.Second || d > 2*time.Second {
		t.Errorf("expiry %v not ~1h from issue (%v)", tok.ExpiresAt, wantExp)
	}

	claims, err := m.Parse(tok.Token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.UserID)
	}
	if claims.TokenID == "" {
		t.Error("expected a token id")
	}
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", time.Hour)
	issuedAt := time.Now().Add(-61 * time.Minute)
	m.now = func() time.Time { return issuedAt }
	tok, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if _, err := m.Parse(tok.Token); err != nil {
		t.Fatalf("token should still be valid before 1h: %v", err)
	}
}

func TestTokenRejectsForgeries(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	tok, _ := other.Issue("user-123")
	if _, err := m.Parse(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret: got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := m.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg=none token: got %v", err)
	}

	if _, err := m.Parse(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token: got %v", err)
	}
	if _, err := m.Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v", err)
	}
}
