// Package auth verifies detached wallet signatures on privileged requests.
package auth

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

// FreshnessWindow bounds how old (or how far in the future) a signed request
// may be. A stale signature is rejected before any state is touched.
const FreshnessWindow = 60 * time.Second

// Verifier validates detached ed25519 signatures over the canonical
// "action|wallet|timestamp" message. The wallet string is the base58-encoded
// public key, so possession of the wallet is possession of the verifier key.
type Verifier struct {
	now func() time.Time
	log zerolog.Logger
}

// NewVerifier creates a new signature verifier
func NewVerifier(log zerolog.Logger) *Verifier {
	return &Verifier{
		now: time.Now,
		log: log.With().Str("service", "auth").Logger(),
	}
}

// SignedMessage renders the canonical message for an action.
func SignedMessage(action, wallet string, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d", action, wallet, timestamp))
}

// Verify checks the signature and its freshness. timestamp is unix seconds;
// signature is base58-encoded.
func (v *Verifier) Verify(action, wallet string, timestamp int64, signature string) error {
	if wallet == "" {
		return fmt.Errorf("wallet is required")
	}
	if signature == "" {
		return fmt.Errorf("signature is required")
	}

	age := v.now().Unix() - timestamp
	if age > int64(FreshnessWindow.Seconds()) || age < -int64(FreshnessWindow.Seconds()) {
		return fmt.Errorf("signature timestamp outside freshness window")
	}

	pubKey, err := base58.Decode(wallet)
	if err != nil {
		return fmt.Errorf("invalid wallet public key: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid wallet public key length %d", len(pubKey))
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature length %d", len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKey), SignedMessage(action, wallet, timestamp), sig) {
		v.log.Warn().Str("wallet", wallet).Str("action", action).Msg("signature verification failed")
		return fmt.Errorf("signature verification failed")
	}
	return nil
}
