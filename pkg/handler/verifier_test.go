package handler

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"testing"
	"time"
)

func signRequest(t *testing.T, priv ed25519.PrivateKey, timestamp string, body []byte) string {
	t.Helper()
	msg := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(priv, msg))
}

func TestVerifyInteraction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	body := []byte(`{"type":1}`)
	validSig := signRequest(t, priv, timestamp, body)

	tests := []struct {
		name      string
		timestamp string
		signature string
		body      []byte
		wantErr   bool
	}{
		{
			name:      "valid signature",
			timestamp: timestamp,
			signature: validSig,
			body:      body,
			wantErr:   false,
		},
		{
			name:      "tampered body",
			timestamp: timestamp,
			signature: validSig,
			body:      []byte(`{"type":2}`),
			wantErr:   true,
		},
		{
			name:      "tampered timestamp",
			timestamp: strconv.FormatInt(time.Now().Unix()+1, 10),
			signature: validSig,
			body:      body,
			wantErr:   true,
		},
		{
			name:      "missing timestamp header",
			timestamp: "",
			signature: validSig,
			body:      body,
			wantErr:   true,
		},
		{
			name:      "missing signature header",
			timestamp: timestamp,
			signature: "",
			body:      body,
			wantErr:   true,
		},
		{
			name:      "signature not hex",
			timestamp: timestamp,
			signature: "not-hex-at-all",
			body:      body,
			wantErr:   true,
		},
		{
			name:      "signature wrong length",
			timestamp: timestamp,
			signature: "deadbeef",
			body:      body,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyInteraction(pub, tt.timestamp, tt.signature, tt.body)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyInteraction() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyInteractionBitFlip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	timestamp := "1700000000"
	body := []byte(`{"type":1,"id":"42","token":"tok"}`)
	validSig := signRequest(t, priv, timestamp, body)

	if err := VerifyInteraction(pub, timestamp, validSig, body); err != nil {
		t.Fatalf("VerifyInteraction() with valid signature error = %v", err)
	}

	// Flip one bit of the signature
	raw, _ := hex.DecodeString(validSig)
	raw[0] ^= 0x01
	flippedSig := hex.EncodeToString(raw)

	if err := VerifyInteraction(pub, timestamp, flippedSig, body); err == nil {
		t.Error("VerifyInteraction() should reject a bit-flipped signature")
	}

	// Flip one bit of the body
	flippedBody := append([]byte(nil), body...)
	flippedBody[0] ^= 0x01

	if err := VerifyInteraction(pub, timestamp, validSig, flippedBody); err == nil {
		t.Error("VerifyInteraction() should reject a bit-flipped body")
	}
}

func TestVerifyInteractionWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	timestamp := "1700000000"
	body := []byte(`{"type":1}`)
	sig := signRequest(t, priv, timestamp, body)

	if err := VerifyInteraction(otherPub, timestamp, sig, body); err == nil {
		t.Error("VerifyInteraction() should reject a signature from a different key")
	}
}

func TestParsePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	parsed, err := ParsePublicKey(hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("ParsePublicKey() error = %v", err)
	}
	if !parsed.Equal(pub) {
		t.Error("ParsePublicKey() returned a different key")
	}

	if _, err := ParsePublicKey("zzzz"); err == nil {
		t.Error("ParsePublicKey() should reject non-hex input")
	}

	if _, err := ParsePublicKey("deadbeef"); err == nil {
		t.Error("ParsePublicKey() should reject a short key")
	}
}
