// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateTestCert creates a self-signed ECDSA P-256 certificate for testing.
func generateTestCert(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(certDER)
	require.NoError(t, err)

	return cert, key
}

func TestComputeDigest_SHA256(t *testing.T) {
	cert, _ := generateTestCert(t)

	d, err := ComputeDigest(cert, SHA256)
	require.NoError(t, err)
	assert.Len(t, string(d), sha256.Size)

	// Verify the digest matches a manual computation.
	expected := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	assert.Equal(t, Digest(expected[:]), d)
}

func TestComputeDigest_SHA384(t *testing.T) {
	cert, _ := generateTestCert(t)

	d, err := ComputeDigest(cert, SHA384)
	require.NoError(t, err)
	assert.Len(t, string(d), sha512.Size384)

	expected := sha512.Sum384(cert.RawSubjectPublicKeyInfo)
	assert.Equal(t, Digest(expected[:]), d)
}

func TestComputeDigest_SHA512(t *testing.T) {
	cert, _ := generateTestCert(t)

	d, err := ComputeDigest(cert, SHA512)
	require.NoError(t, err)
	assert.Len(t, string(d), sha512.Size)

	expected := sha512.Sum512(cert.RawSubjectPublicKeyInfo)
	assert.Equal(t, Digest(expected[:]), d)
}

func TestComputeDigest_NilCert(t *testing.T) {
	_, err := ComputeDigest(nil, SHA256)
	assert.ErrorIs(t, err, ErrNoCertificate)
}

func TestSum_MatchesComputeDigest(t *testing.T) {
	cert, _ := generateTestCert(t)

	for _, alg := range []Algorithm{SHA256, SHA384, SHA512} {
		fromCert, err := ComputeDigest(cert, alg)
		require.NoError(t, err)

		fromRaw, err := Sum(cert.RawSubjectPublicKeyInfo, alg)
		require.NoError(t, err)
		assert.Equal(t, fromCert, fromRaw)
	}
}

func TestSum_EmptyInput(t *testing.T) {
	_, err := Sum(nil, SHA256)
	assert.ErrorIs(t, err, ErrDigestFailed)
}

func TestSum_UnknownAlgorithm(t *testing.T) {
	_, err := Sum([]byte{0x30, 0x00}, Algorithm("sha1"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestComputeDigest_UnknownAlgorithm(t *testing.T) {
	cert, _ := generateTestCert(t)

	_, err := ComputeDigest(cert, Algorithm("md5"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestComputeDigest_DifferentKeys(t *testing.T) {
	cert1, _ := generateTestCert(t)
	cert2, _ := generateTestCert(t)

	d1, err := ComputeDigest(cert1, SHA256)
	require.NoError(t, err)
	d2, err := ComputeDigest(cert2, SHA256)
	require.NoError(t, err)

	// Two certificates with different keys must produce different digests.
	assert.NotEqual(t, d1, d2)
}

func TestComputeDigest_SameKeyAcrossCerts(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template1 := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	template2 := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(2 * time.Hour),
	}

	certDER1, err := x509.CreateCertificate(rand.Reader, template1, template1, &key.PublicKey, key)
	require.NoError(t, err)
	cert1, err := x509.ParseCertificate(certDER1)
	require.NoError(t, err)

	certDER2, err := x509.CreateCertificate(rand.Reader, template2, template2, &key.PublicKey, key)
	require.NoError(t, err)
	cert2, err := x509.ParseCertificate(certDER2)
	require.NoError(t, err)

	// Same key in different certificates must produce the same digest. This
	// is the property that lets pins survive certificate reissuance.
	d1, err := ComputeDigest(cert1, SHA256)
	require.NoError(t, err)
	d2, err := ComputeDigest(cert2, SHA256)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestDigest_Encodings(t *testing.T) {
	cert, _ := generateTestCert(t)

	d, err := ComputeDigest(cert, SHA256)
	require.NoError(t, err)

	assert.Len(t, d.Hex(), 64)
	assert.Equal(t, d.Bytes(), []byte(d))

	decoded, err := hex.DecodeString(d.Hex())
	require.NoError(t, err)
	assert.Equal(t, []byte(d), decoded)
}

func TestDigest_AlgorithmInference(t *testing.T) {
	cert, _ := generateTestCert(t)

	for _, alg := range []Algorithm{SHA256, SHA384, SHA512} {
		d, err := ComputeDigest(cert, alg)
		require.NoError(t, err)

		inferred, ok := d.Algorithm()
		assert.True(t, ok)
		assert.Equal(t, alg, inferred)
	}

	_, ok := Digest("short").Algorithm()
	assert.False(t, ok)
}

func TestDigest_String(t *testing.T) {
	cert, _ := generateTestCert(t)

	d, err := ComputeDigest(cert, SHA256)
	require.NoError(t, err)

	// Known lengths render in RFC 7469 pin form.
	assert.Equal(t, "sha256/"+d.Base64(), d.String())

	// Unknown lengths fall back to hex.
	odd := Digest([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Equal(t, "deadbeef", odd.String())
}

func TestDigestFunc_Adapter(t *testing.T) {
	cert, _ := generateTestCert(t)

	var digester Digester = DigestFunc(ComputeDigest)
	d, err := digester.Digest(cert, SHA256)
	require.NoError(t, err)

	expected, err := ComputeDigest(cert, SHA256)
	require.NoError(t, err)
	assert.Equal(t, expected, d)
}
