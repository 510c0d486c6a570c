// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package dnspin

import (
	"log/slog"
	"time"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// Certificate Usage values as defined in RFC 6698 Section 2.1.1. Discovery
// only trusts the DANE usages, where the record itself asserts the key; the
// PKIX usages are listed for completeness when inspecting foreign records.
const (
	// UsagePKIXTA (PKIX-TA) constrains which CA can issue certificates for
	// the service. The chain must still pass PKIX validation.
	UsagePKIXTA uint8 = 0

	// UsagePKIXEE (PKIX-EE) pins a specific end-entity certificate. The
	// chain must still pass PKIX validation.
	UsagePKIXEE uint8 = 1

	// UsageDANETA (DANE-TA) asserts a trust anchor for the domain.
	UsageDANETA uint8 = 2

	// UsageDANEEE (DANE-EE) asserts a specific end-entity key.
	UsageDANEEE uint8 = 3
)

// Selector values as defined in RFC 6698 Section 2.1.2.
const (
	// SelectorFullCert selects the full DER-encoded certificate.
	SelectorFullCert uint8 = 0

	// SelectorSPKI selects the DER-encoded SubjectPublicKeyInfo. Only
	// records with this selector carry pin material.
	SelectorSPKI uint8 = 1
)

// Matching Type values as defined in RFC 6698 Section 2.1.3.
const (
	// MatchingExact carries the selected data itself.
	MatchingExact uint8 = 0

	// MatchingSHA256 carries a SHA-256 hash of the selected data.
	MatchingSHA256 uint8 = 1

	// MatchingSHA512 carries a SHA-512 hash of the selected data.
	MatchingSHA512 uint8 = 2
)

// Discovered is the outcome of a pin discovery query: the SPKI pin material
// a zone publishes for one host and port, normalized into pin-set form.
type Discovered struct {
	// Hostname is the host the records describe.
	Hostname string

	// Port is the TCP port the records describe.
	Port uint16

	// Algorithms lists the digest algorithms present in Pins, sorted.
	Algorithms []spki.Algorithm

	// Pins holds the discovered SPKI digests.
	Pins spki.PinSet
}

// ResolverConfig configures the DNS resolver used for pin discovery.
type ResolverConfig struct {
	// Server is the DNS resolver address (e.g., "8.8.8.8:53").
	// When empty, the system resolver from /etc/resolv.conf is used.
	Server string

	// UseTLS enables DNS-over-TLS (DoT) on port 853.
	UseTLS bool

	// TLSServerName is the TLS Server Name Indication (SNI) value
	// for DNS-over-TLS connections. Only used when UseTLS is true.
	TLSServerName string

	// SkipDNSSEC accepts responses without the Authenticated Data (AD)
	// flag. The zero value requires DNSSEC-validated responses; pins
	// learned over unauthenticated DNS are attacker-suppliable.
	SkipDNSSEC bool

	// Timeout is the maximum duration for a DNS query.
	// Default: 5 seconds.
	Timeout time.Duration

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}
