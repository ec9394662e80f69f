package iute

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

// Signed webhook headers. Lookups go through http.Header, so the provider
// may send canonical or lower-cased names.
const (
	HeaderTimestamp = "X-Iute-Timestamp"
	HeaderSignature = "X-Iute-Signature"
)

var (
	ErrMissingHeader = errors.New("missing required iute header")
	ErrBadSignature  = errors.New("iute signature verification failed")
)

// Envelope is an inbound webhook notification exactly as received. Body
// must be the raw request bytes: the signature covers them as sent, so the
// same bytes serve verification and JSON parsing, never a re-serialization.
type Envelope struct {
	Body    []byte
	Headers http.Header
}

// Verifier authenticates inbound webhooks against the provider's published
// signing key. Verification is a hard gate: it must pass before any
// side-effecting action is taken on the notification.
type Verifier struct {
	Keys *KeyCache
}

func NewVerifier(keys *KeyCache) *Verifier {
	return &Verifier{Keys: keys}
}

// Verify checks the envelope's signature. The signed message is the raw
// body concatenated with the timestamp header bytes, no separator, digested
// with SHA-256 and verified as an RSA PKCS#1 v1.5 signature. Header checks
// happen before any key fetch.
func (v *Verifier) Verify(ctx context.Context, env Envelope, domain string) error {
	ts := env.Headers.Get(HeaderTimestamp)
	if ts == "" {
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderTimestamp)
	}
	sigB64 := env.Headers.Get(HeaderSignature)
	if sigB64 == "" {
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderSignature)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid base64", ErrBadSignature)
	}
	key, err := v.Keys.Key(ctx, domain)
	if err != nil {
		return err
	}
	msg := make([]byte, 0, len(env.Body)+len(ts))
	msg = append(msg, env.Body...)
	msg = append(msg, ts...)
	digest := sha256.Sum256(msg)
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig); err != nil {
		return ErrBadSignature
	}
	return nil
}
