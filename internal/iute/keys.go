package iute

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"iutesync/internal/metrics"
)

// ErrKeyFetch indicates the provider's public key could not be obtained.
var ErrKeyFetch = errors.New("iute public key fetch failed")

// DefaultKeyTTL bounds how long a downloaded public key is reused before
// it is refetched.
const DefaultKeyTTL = time.Hour

// KeyCache is a single-slot, process-wide cache of the provider's RSA
// signing key. Only one domain is active per runtime instance, so the slot
// is implicitly keyed by domain. The (key, fetchedAt) pair is replaced
// atomically under the mutex; the network fetch happens outside it.
type KeyCache struct {
	TTL  time.Duration
	HTTP *http.Client

	mu        sync.Mutex
	key       *rsa.PublicKey
	fetchedAt time.Time

	now func() time.Time
}

func NewKeyCache(ttl time.Duration) *KeyCache {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	return &KeyCache{
		TTL:  ttl,
		HTTP: &http.Client{Timeout: 10 * time.Second},
		now:  time.Now,
	}
}

// Key returns the cached public key, refetching it from the well-known
// path under domain when the slot is empty or past its TTL.
func (kc *KeyCache) Key(ctx context.Context, domain string) (*rsa.PublicKey, error) {
	kc.mu.Lock()
	if kc.key != nil && kc.now().Sub(kc.fetchedAt) < kc.TTL {
		key := kc.key
		kc.mu.Unlock()
		metrics.KeyCacheHits.Inc()
		return key, nil
	}
	kc.mu.Unlock()

	key, err := kc.fetch(ctx, domain)
	if err != nil {
		return nil, err
	}
	kc.mu.Lock()
	kc.key = key
	kc.fetchedAt = kc.now()
	kc.mu.Unlock()
	return key, nil
}

func (kc *KeyCache) fetch(ctx context.Context, domain string) (*rsa.PublicKey, error) {
	metrics.KeyFetches.Inc()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, domain+"/public-key.pem", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	resp, err := kc.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrKeyFetch, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	return ParsePublicKeyPEM(data)
}

// ParsePublicKeyPEM decodes PEM key material into an RSA public key.
// Accepts both PKIX "PUBLIC KEY" and PKCS#1 "RSA PUBLIC KEY" blocks.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in response", ErrKeyFetch)
	}
	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA key", ErrKeyFetch)
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	return key, nil
}
