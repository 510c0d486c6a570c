// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Digest is a raw SPKI digest value. The bytes are stored in an immutable
// string so digests compare with == and key maps directly. Equality is
// exact byte equality: no truncation, prefix matching, or normalization.
type Digest string

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	return []byte(d)
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString([]byte(d))
}

// Base64 returns the standard base64 encoding of the digest.
func (d Digest) Base64() string {
	return base64.StdEncoding.EncodeToString([]byte(d))
}

// Algorithm infers the digest algorithm from the digest length. It returns
// false when the length corresponds to no supported algorithm.
func (d Digest) Algorithm() (Algorithm, bool) {
	alg, ok := algorithmBySize[len(d)]
	return alg, ok
}

// String renders the digest in RFC 7469 pin form ("sha256/<base64>") when
// the algorithm can be inferred, falling back to hex for unknown lengths.
func (d Digest) String() string {
	if pin, err := FormatPin(d); err == nil {
		return pin
	}
	return d.Hex()
}

// Sum hashes an already DER-encoded SubjectPublicKeyInfo structure with
// the given algorithm. Most callers hold a certificate and should use
// ComputeDigest; Sum serves the cases where only the raw SPKI bytes are
// at hand, such as material recovered from DNS records.
func Sum(der []byte, alg Algorithm) (Digest, error) {
	fn, ok := digestFuncs[alg]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	if len(der) == 0 {
		return "", fmt.Errorf("%w: empty SubjectPublicKeyInfo", ErrDigestFailed)
	}
	return Digest(fn(der)), nil
}

// ComputeDigest hashes the certificate's DER-encoded SubjectPublicKeyInfo
// with the given algorithm. The digest covers the full SPKI structure,
// algorithm identifier included, not just the key bytes.
func ComputeDigest(cert *x509.Certificate, alg Algorithm) (Digest, error) {
	if cert == nil {
		return "", ErrNoCertificate
	}
	if len(cert.RawSubjectPublicKeyInfo) == 0 {
		return "", fmt.Errorf("%w: certificate carries no SubjectPublicKeyInfo", ErrDigestFailed)
	}
	return Sum(cert.RawSubjectPublicKeyInfo, alg)
}

// Digester computes SPKI digests. It exists so callers can substitute a
// caching or instrumented implementation for plain ComputeDigest.
type Digester interface {
	Digest(cert *x509.Certificate, alg Algorithm) (Digest, error)
}

// DigestFunc adapts a plain function to the Digester interface.
type DigestFunc func(cert *x509.Certificate, alg Algorithm) (Digest, error)

// Digest calls f.
func (f DigestFunc) Digest(cert *x509.Certificate, alg Algorithm) (Digest, error) {
	return f(cert, alg)
}
