// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package spki

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// ParsePin parses a pin in any of the accepted encodings:
//
//   - RFC 7469 directive form: "sha256/<base64>"
//   - bare lowercase or uppercase hex
//   - bare standard base64
//
// A value is taken as directive form only when the text before the first
// slash names a supported algorithm, since '/' is also part of the base64
// alphabet. A bare value that decodes under both hex and base64 is taken as
// hex. The decoded digest length must correspond to a supported algorithm.
func ParsePin(s string) (Digest, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty pin", ErrInvalidPinFormat)
	}

	if prefix, payload, found := strings.Cut(s, "/"); found {
		if alg, err := ParseAlgorithm(prefix); err == nil {
			raw, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return "", fmt.Errorf("%w: %w", ErrInvalidPinFormat, err)
			}
			if len(raw) != alg.Size() {
				return "", fmt.Errorf("%w: %s digest must be %d bytes, got %d", ErrInvalidPinFormat, alg, alg.Size(), len(raw))
			}
			return Digest(raw), nil
		}
	}

	if raw, err := hex.DecodeString(strings.ToLower(s)); err == nil {
		if _, ok := algorithmBySize[len(raw)]; ok {
			return Digest(raw), nil
		}
	}
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		if _, ok := algorithmBySize[len(raw)]; ok {
			return Digest(raw), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPinFormat, s)
}

// FormatPin renders a digest in RFC 7469 pin form, inferring the algorithm
// prefix from the digest length.
func FormatPin(d Digest) (string, error) {
	alg, ok := d.Algorithm()
	if !ok {
		return "", fmt.Errorf("%w: %d-byte digest matches no supported algorithm", ErrInvalidPinFormat, len(d))
	}
	return string(alg) + "/" + d.Base64(), nil
}

// PinSet is a set of pinned SPKI digests. Membership is exact byte equality
// of digest values. A nil PinSet is distinct from an empty one: nil means no
// pins were supplied at all, while an empty set pins nothing and can never
// match.
type PinSet map[Digest]struct{}

// NewPinSet builds a PinSet from raw digests.
func NewPinSet(pins ...Digest) PinSet {
	s := make(PinSet, len(pins))
	for _, p := range pins {
		s.Add(p)
	}
	return s
}

// ParsePinSet parses a list of pin strings (see ParsePin) into a PinSet.
func ParsePinSet(pins []string) (PinSet, error) {
	s := make(PinSet, len(pins))
	for _, p := range pins {
		d, err := ParsePin(p)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}

// Add inserts a digest into the set.
func (s PinSet) Add(d Digest) {
	s[d] = struct{}{}
}

// Contains reports whether the exact digest is pinned. Safe on a nil set.
func (s PinSet) Contains(d Digest) bool {
	_, ok := s[d]
	return ok
}

// Len returns the number of pinned digests.
func (s PinSet) Len() int {
	return len(s)
}

// Pins returns the pins in display form, sorted for stable output.
func (s PinSet) Pins() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d.String())
	}
	slices.Sort(out)
	return out
}
