package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignedRequest(t *testing.T, action string, timestamp int64) (wallet, signature string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	wallet = base58.Encode(pub)
	sig := ed25519.Sign(priv, SignedMessage(action, wallet, timestamp))
	return wallet, base58.Encode(sig)
}

func fixedVerifier(at time.Time) *Verifier {
	v := NewVerifier(zerolog.Nop())
	v.now = func() time.Time { return at }
	return v
}

func TestVerify_ValidSignature(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	wallet, sig := newSignedRequest(t, "rebalance", now.Unix())

	v := fixedVerifier(now)
	assert.NoError(t, v.Verify("rebalance", wallet, now.Unix(), sig))
}

func TestVerify_FreshnessWindow(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		signed int64
		ok     bool
	}{
		{"at the edge", now.Add(-FreshnessWindow).Unix(), true},
		{"one second stale", now.Add(-FreshnessWindow - time.Second).Unix(), false},
		{"slightly future", now.Add(30 * time.Second).Unix(), true},
		{"too far future", now.Add(FreshnessWindow + time.Second).Unix(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wallet, sig := newSignedRequest(t, "rebalance", tt.signed)
			err := fixedVerifier(now).Verify("rebalance", wallet, tt.signed, sig)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "freshness window")
			}
		})
	}
}

func TestVerify_SignatureOverDifferentActionRejected(t *testing.T) {
	now := time.Now()
	wallet, sig := newSignedRequest(t, "withdraw", now.Unix())

	v := fixedVerifier(now)
	assert.ErrorContains(t, v.Verify("rebalance", wallet, now.Unix(), sig), "verification failed")
}

func TestVerify_TamperedSignatureRejected(t *testing.T) {
	now := time.Now()
	wallet, sig := newSignedRequest(t, "rebalance", now.Unix())

	raw, err := base58.Decode(sig)
	require.NoError(t, err)
	raw[0] ^= 0xff
	tampered := base58.Encode(raw)

	v := fixedVerifier(now)
	assert.ErrorContains(t, v.Verify("rebalance", wallet, now.Unix(), tampered), "verification failed")
}

func TestVerify_InputValidation(t *testing.T) {
	now := time.Now()
	wallet, sig := newSignedRequest(t, "rebalance", now.Unix())
	v := fixedVerifier(now)

	assert.ErrorContains(t, v.Verify("rebalance", "", now.Unix(), sig), "wallet is required")
	assert.ErrorContains(t, v.Verify("rebalance", wallet, now.Unix(), ""), "signature is required")
	assert.ErrorContains(t, v.Verify("rebalance", "0notbase58", now.Unix(), sig), "invalid wallet public key")
	assert.ErrorContains(t, v.Verify("rebalance", "abc", now.Unix(), sig), "public key length")
	assert.ErrorContains(t, v.Verify("rebalance", wallet, now.Unix(), "abc"), "signature length")
}

func TestSignedMessage_Canonical(t *testing.T) {
	msg := SignedMessage("rebalance", "walletX", 1700000000)
	assert.Equal(t, "rebalance|walletX|1700000000", string(msg))
}
