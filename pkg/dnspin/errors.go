// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package dnspin discovers and publishes SPKI pin material through DNS
// TLSA records (RFC 6698). Discovery turns the TLSA records a zone already
// publishes for DANE into a pin set; publication renders a pin set back
// into zone file lines.
package dnspin

import "errors"

// Lookup errors indicate issues resolving or authenticating TLSA records.
var (
	// ErrLookupFailed indicates the DNS query for TLSA records failed.
	ErrLookupFailed = errors.New("dnspin: DNS lookup failed")

	// ErrDNSSECRequired indicates DNSSEC validation is required but the
	// Authenticated Data (AD) flag was not set in the DNS response.
	ErrDNSSECRequired = errors.New("dnspin: DNSSEC validation required but AD flag not set")

	// ErrNoPins indicates the query succeeded but no record yielded a pin.
	ErrNoPins = errors.New("dnspin: no pins published")
)

// Input validation errors indicate invalid parameters were provided.
var (
	// ErrInvalidHostname indicates an empty or malformed hostname was provided.
	ErrInvalidHostname = errors.New("dnspin: invalid hostname")

	// ErrInvalidPort indicates port number zero was provided.
	ErrInvalidPort = errors.New("dnspin: invalid port")

	// ErrNoPublishablePins indicates a pin set holds no digest length a
	// TLSA record can carry.
	ErrNoPublishablePins = errors.New("dnspin: no publishable pins")
)

// Configuration errors indicate issues with resolver setup.
var (
	// ErrResolverConfig indicates the resolver configuration is invalid.
	ErrResolverConfig = errors.New("dnspin: invalid resolver configuration")
)
