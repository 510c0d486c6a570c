// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package spki computes and encodes SubjectPublicKeyInfo (SPKI) digests for
// certificate public-key pinning. A pin is the digest of a certificate's
// DER-encoded SPKI under a named algorithm; a PinSet collects the digests a
// host is allowed to present. Pinning the SPKI rather than the certificate
// means reissued certificates carrying the same key keep matching.
package spki

import "errors"

var (
	// ErrNoCertificate is returned when a nil certificate is provided.
	ErrNoCertificate = errors.New("spki: no certificate provided")

	// ErrUnknownAlgorithm is returned for digest algorithms outside the
	// supported set (sha256, sha384, sha512).
	ErrUnknownAlgorithm = errors.New("spki: unknown digest algorithm")

	// ErrDigestFailed is returned when a digest cannot be computed from the
	// certificate, e.g. an empty SubjectPublicKeyInfo.
	ErrDigestFailed = errors.New("spki: could not compute SPKI digest")

	// ErrInvalidPinFormat is returned when a pin string cannot be decoded or
	// decodes to an unsupported digest length.
	ErrInvalidPinFormat = errors.New("spki: invalid pin format")
)
