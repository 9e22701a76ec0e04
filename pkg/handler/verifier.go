package handler

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// ParsePublicKey decodes the hex-encoded Ed25519 bot public key
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// VerifyInteraction validates that an interactions request genuinely came from
// Discord. The Ed25519 signature covers the timestamp concatenated with the
// raw body bytes exactly as received; any failure here must result in a 401
// before the body is interpreted.
// See: https://discord.com/developers/docs/interactions/receiving-and-responding#security-and-authorization
func VerifyInteraction(publicKey ed25519.PublicKey, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return fmt.Errorf("header not found: X-Signature-Timestamp")
	}
	if signature == "" {
		return fmt.Errorf("header not found: X-Signature-Ed25519")
	}

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	if !ed25519.Verify(publicKey, msg, sig) {
		return fmt.Errorf("signature verification failed")
	}

	return nil
}
