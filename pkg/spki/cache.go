// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultHashCacheTTL is how long a computed digest stays cached.
	DefaultHashCacheTTL = 12 * time.Hour

	// hashCacheCleanupInterval is how often expired entries are purged.
	hashCacheCleanupInterval = time.Hour
)

// HashCacheConfig configures a HashCache.
type HashCacheConfig struct {
	// TTL is how long computed digests stay cached. Defaults to
	// DefaultHashCacheTTL.
	TTL time.Duration

	// Digester computes digests on cache misses. Defaults to ComputeDigest.
	Digester Digester

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// HashCache is a Digester that memoizes SPKI digest computation per
// certificate and algorithm. Connection-heavy clients hash the same server
// SPKI on every handshake; the cache makes repeat lookups free. Safe for
// concurrent use.
type HashCache struct {
	digester Digester
	cache    *gocache.Cache
	logger   *slog.Logger
}

// NewHashCache creates a HashCache. A nil config uses defaults throughout.
func NewHashCache(cfg *HashCacheConfig) *HashCache {
	if cfg == nil {
		cfg = &HashCacheConfig{}
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultHashCacheTTL
	}
	if cfg.Digester == nil {
		cfg.Digester = DigestFunc(ComputeDigest)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &HashCache{
		digester: cfg.Digester,
		cache:    gocache.New(cfg.TTL, hashCacheCleanupInterval),
		logger:   cfg.Logger.With("component", "spki_cache"),
	}
}

// Digest returns the cached digest for the certificate and algorithm,
// computing and storing it on first use. Cache keys derive from the full
// certificate fingerprint, so distinct certificates sharing a public key
// each hit the underlying digester once.
func (c *HashCache) Digest(cert *x509.Certificate, alg Algorithm) (Digest, error) {
	if cert == nil {
		return "", ErrNoCertificate
	}
	key := cacheKey(cert, alg)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(Digest), nil
	}
	d, err := c.digester.Digest(cert, alg)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, d, gocache.DefaultExpiration)
	c.logger.Debug("cached SPKI digest", "algorithm", alg, "digest", d.Hex())
	return d, nil
}

// Len returns the number of cached digests.
func (c *HashCache) Len() int {
	return c.cache.ItemCount()
}

// Flush removes all cached digests.
func (c *HashCache) Flush() {
	c.cache.Flush()
}

func cacheKey(cert *x509.Certificate, alg Algorithm) string {
	fp := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(fp[:]) + "/" + string(alg)
}
