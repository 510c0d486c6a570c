// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package dnspin

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"slices"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// ZoneLines renders a pin set as DNS zone file lines for publication. Each
// pin becomes a DANE-EE SPKI record ("3 1 1" for SHA-256 digests, "3 1 2"
// for SHA-512), the same shape LookupPins consumes. Digest lengths TLSA has
// no matching type for are skipped; an error is returned only when nothing
// is publishable. Lines come back sorted for stable zone diffs.
func ZoneLines(hostname string, port uint16, pins spki.PinSet) ([]string, error) {
	if hostname == "" {
		return nil, ErrInvalidHostname
	}
	if port == 0 {
		return nil, ErrInvalidPort
	}
	if pins.Len() == 0 {
		return nil, ErrNoPublishablePins
	}

	name := formatTLSAName(hostname, port)
	lines := make([]string, 0, pins.Len())
	for d := range pins {
		var matching uint8
		switch len(d) {
		case sha256.Size:
			matching = MatchingSHA256
		case sha512.Size:
			matching = MatchingSHA512
		default:
			continue
		}
		lines = append(lines, fmt.Sprintf("%s IN TLSA %d %d %d %s",
			name, UsageDANEEE, SelectorSPKI, matching, d.Hex()))
	}

	if len(lines) == 0 {
		return nil, ErrNoPublishablePins
	}
	slices.Sort(lines)
	return lines, nil
}
