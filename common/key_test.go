package common_test

import (
	"encoding/json"
	"testing"

	. "github.com/ipenkin/ex-timestamping/common"
)

func TestSignAndVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("Hello Factom!")
	sig := key.Sign(msg)

	if !key.Public().Verify(msg, &sig) {
		t.Errorf("Signature does not verify")
	}
	msg[0] ^= 1
	if key.Public().Verify(msg, &sig) {
		t.Errorf("Signature verifies a changed message")
	}

	other, _ := GenerateKey()
	msg[0] ^= 1
	if other.Public().Verify(msg, &sig) {
		t.Errorf("Signature verifies with another key")
	}
}

func TestKeyFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	a, err := NewPrivateKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewPrivateKeyFromSeed(seed)
	if a.Public() != b.Public() || a.String() != b.String() {
		t.Errorf("same seed gave different keys")
	}
	if _, err := NewPrivateKeyFromSeed(seed[:31]); err == nil {
		t.Errorf("short seed accepted")
	}

	c, err := NewPrivateKeyFromHex(a.String())
	if err != nil || c.Public() != a.Public() {
		t.Errorf("NewPrivateKeyFromHex = %v, %v", c.Public(), err)
	}
	if _, err := NewPrivateKeyFromHex("00"); err == nil {
		t.Errorf("short private key accepted")
	}
}

func TestPublicKeyText(t *testing.T) {
	key, _ := NewPrivateKeyFromSeed(make([]byte, 32))
	pub := key.Public()

	parsed, err := HexToPublicKey(pub.String())
	if err != nil || parsed != pub {
		t.Errorf("HexToPublicKey = %v, %v", parsed, err)
	}
	if _, err := HexToPublicKey("abcd"); err == nil {
		t.Errorf("short public key accepted")
	}

	sig := key.Sign([]byte("m"))
	data, _ := json.Marshal(struct {
		Pub PublicKey
		Sig Signature
	}{pub, sig})

	var v struct {
		Pub PublicKey
		Sig Signature
	}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v.Pub != pub || v.Sig != sig {
		t.Errorf("json round trip lost the key or signature")
	}

	s, rest, err := UnmarshalSignature(append(sig[:], 1))
	if err != nil || s != sig || len(rest) != 1 {
		t.Errorf("UnmarshalSignature = %v %v", rest, err)
	}
}
