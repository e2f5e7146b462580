package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func TestObjectKeyJoinsPrefix(t *testing.T) {
	client := &Client{keyPrefix: "deal-images"}
	if got := client.ObjectKey("user-1", "pic.jpg"); got != "deal-images/user-1/pic.jpg" {
		t.Fatalf("unexpected key %q", got)
	}

	bare := &Client{}
	if got := bare.ObjectKey("/user-1/", "pic.jpg"); got != "user-1/pic.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPublicURL(t *testing.T) {
	client := &Client{defaultBucket: "fooddeals-media"}
	got := client.PublicURL("deal-images/u/pic.jpg")
	want := "https://storage.googleapis.com/fooddeals-media/deal-images/u/pic.jpg"
	if got != want {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestSignJWTProducesVerifiableSignature(t *testing.T) {
	key := mustGenerateKey(t)

	unsigned := "header.payload"
	signature, err := signJWT(unsigned, key)
	if err != nil {
		t.Fatalf("signJWT returned error: %v", err)
	}

	rawSig, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	hash := sha256.Sum256([]byte(unsigned))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}
