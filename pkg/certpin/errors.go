// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package certpin

import "errors"

var (
	// ErrInvalidConfig indicates the pinning configuration is missing,
	// malformed, or violates a policy rule (unknown algorithm, too few
	// pins, unresolvable domain, overlapping subdomain scopes).
	ErrInvalidConfig = errors.New("certpin: invalid configuration")

	// ErrNoPinnedDomains indicates a configuration with no pinned domains.
	ErrNoPinnedDomains = errors.New("certpin: no pinned domains configured")

	// ErrPinValidationFailed is surfaced through the TLS handshake when a
	// pinned hostname's chain is blocked.
	ErrPinValidationFailed = errors.New("certpin: pin validation failed")
)
