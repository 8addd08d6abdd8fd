package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// ParsePublicKey decodes the hex application public key.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid discord public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid discord public key: want %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Verifier checks the Ed25519 signature headers of inbound interactions.
type Verifier struct {
	key ed25519.PublicKey
}

func NewVerifier(key ed25519.PublicKey) *Verifier {
	return &Verifier{key: key}
}

// Verify returns domain.ErrAuth when the signature is missing or invalid.
// The request body stays readable afterwards.
func (v *Verifier) Verify(r *http.Request) error {
	if r.Header.Get("X-Signature-Ed25519") == "" || r.Header.Get("X-Signature-Timestamp") == "" {
		return fmt.Errorf("%w: missing signature headers", domain.ErrAuth)
	}
	if !discordgo.VerifyInteraction(r, v.key) {
		return domain.ErrAuth
	}
	return nil
}
