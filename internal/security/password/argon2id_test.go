package password

import (
	"strings"
	"testing"
)

// fastParams keeps the KDF cheap in tests.
var fastParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := New(fastParams)

	phc, err := h.Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Errorf("unexpected PHC prefix: %q", phc)
	}
	if !h.Verify("Sup3r$ecret", phc) {
		t.Error("correct password did not verify")
	}
	if h.Verify("Sup3r$ecret2", phc) {
		t.Error("wrong password verified")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := New(fastParams)
	a, err := h.Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password must differ (random salt)")
	}
	if !h.Verify("Sup3r$ecret", a) || !h.Verify("Sup3r$ecret", b) {
		t.Error("both salted hashes must verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := New(fastParams)
	bad := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$onlyfourparts",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=x,t=y,p=z$c2FsdA$ZGs",
	}
	for _, phc := range bad {
		if h.Verify("whatever", phc) {
			t.Errorf("malformed hash verified: %q", phc)
		}
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := New(fastParams).Hash(""); err == nil {
		t.Error("empty password must not hash")
	}
}

// Verify must work with params different from the hasher's own: the PHC
// string carries them.
func TestVerifyUsesEmbeddedParams(t *testing.T) {
	strong := New(Params{Memory: 16 * 1024, Time: 2, Parallelism: 1, KeyLen: 32})
	phc, err := strong.Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	weak := New(fastParams)
	if !weak.Verify("Sup3r$ecret", phc) {
		t.Error("verify must honor the params embedded in the PHC string")
	}
}
