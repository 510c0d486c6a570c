// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strings"
)

// Algorithm identifies a digest algorithm used to hash a certificate's
// SubjectPublicKeyInfo. The string form matches the prefix used in RFC 7469
// pin directives (e.g. "sha256").
type Algorithm string

const (
	// SHA256 is the SHA-256 digest algorithm, the default and the only
	// algorithm RFC 7469 requires.
	SHA256 Algorithm = "sha256"

	// SHA384 is the SHA-384 digest algorithm.
	SHA384 Algorithm = "sha384"

	// SHA512 is the SHA-512 digest algorithm.
	SHA512 Algorithm = "sha512"
)

// digestFuncs provides O(1) lookup for digest operations.
var digestFuncs = map[Algorithm]func(data []byte) []byte{
	SHA256: func(d []byte) []byte { h := sha256.Sum256(d); return h[:] },
	SHA384: func(d []byte) []byte { h := sha512.Sum384(d); return h[:] },
	SHA512: func(d []byte) []byte { h := sha512.Sum512(d); return h[:] },
}

// digestSizes maps each algorithm to its digest length in bytes.
var digestSizes = map[Algorithm]int{
	SHA256: sha256.Size,
	SHA384: sha512.Size384,
	SHA512: sha512.Size,
}

// algorithmBySize is the inverse of digestSizes. Digest lengths are unique
// across the supported algorithms, so a raw digest's algorithm can be
// inferred from its length.
var algorithmBySize = map[int]Algorithm{
	sha256.Size:    SHA256,
	sha512.Size384: SHA384,
	sha512.Size:    SHA512,
}

// ParseAlgorithm parses a digest algorithm name. It accepts the canonical
// lowercase form ("sha256") as well as mixed-case and dashed variants
// ("SHA-256") seen in configuration files.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", ""))
	if !alg.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
	return alg, nil
}

// Valid reports whether the algorithm is one of the supported constants.
func (a Algorithm) Valid() bool {
	_, ok := digestSizes[a]
	return ok
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm.
func (a Algorithm) Size() int {
	return digestSizes[a]
}

// String returns the canonical lowercase name.
func (a Algorithm) String() string {
	return string(a)
}
