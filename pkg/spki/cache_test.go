// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"crypto/x509"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDigester wraps ComputeDigest and counts invocations so tests can
// observe cache hits and misses.
type countingDigester struct {
	calls atomic.Int64
}

func (c *countingDigester) Digest(cert *x509.Certificate, alg Algorithm) (Digest, error) {
	c.calls.Add(1)
	return ComputeDigest(cert, alg)
}

func TestHashCache_MemoizesPerCertAndAlgorithm(t *testing.T) {
	cert, _ := generateTestCert(t)
	counter := &countingDigester{}
	cache := NewHashCache(&HashCacheConfig{Digester: counter})

	d1, err := cache.Digest(cert, SHA256)
	require.NoError(t, err)
	d2, err := cache.Digest(cert, SHA256)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, int64(1), counter.calls.Load())

	// A different algorithm for the same certificate is a separate entry.
	_, err = cache.Digest(cert, SHA512)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestHashCache_DistinctCertificates(t *testing.T) {
	cert1, _ := generateTestCert(t)
	cert2, _ := generateTestCert(t)
	counter := &countingDigester{}
	cache := NewHashCache(&HashCacheConfig{Digester: counter})

	d1, err := cache.Digest(cert1, SHA256)
	require.NoError(t, err)
	d2, err := cache.Digest(cert2, SHA256)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.Equal(t, int64(2), counter.calls.Load())
}

func TestHashCache_NilCert(t *testing.T) {
	cache := NewHashCache(nil)

	_, err := cache.Digest(nil, SHA256)
	assert.ErrorIs(t, err, ErrNoCertificate)
}

func TestHashCache_ErrorsNotCached(t *testing.T) {
	cert, _ := generateTestCert(t)
	cache := NewHashCache(nil)

	// Failures must not poison the cache.
	_, err := cache.Digest(cert, Algorithm("md5"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.Equal(t, 0, cache.Len())
}

func TestHashCache_Flush(t *testing.T) {
	cert, _ := generateTestCert(t)
	cache := NewHashCache(nil)

	_, err := cache.Digest(cert, SHA256)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	cache.Flush()
	assert.Equal(t, 0, cache.Len())
}

func TestHashCache_MatchesComputeDigest(t *testing.T) {
	cert, _ := generateTestCert(t)
	cache := NewHashCache(nil)

	cached, err := cache.Digest(cert, SHA384)
	require.NoError(t, err)

	direct, err := ComputeDigest(cert, SHA384)
	require.NoError(t, err)
	assert.Equal(t, direct, cached)
}
