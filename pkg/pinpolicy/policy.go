// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinpolicy

import (
	"time"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// Policy is the pinning policy attached to a pattern. Policies are borrowed
// read-only by the table; callers must not mutate one after registering it.
type Policy struct {
	// IncludeSubdomains extends the policy to strict subdomains of the
	// pattern's domain. Subdomain (wildcard) table entries match only when
	// this is set.
	IncludeSubdomains bool

	// Algorithms lists the digest algorithms to evaluate, in order. The
	// verifier tries each listed algorithm against each chain certificate.
	Algorithms []spki.Algorithm

	// Pins is the set of allowed SPKI digests.
	Pins spki.PinSet

	// ReportOnly records and reports violations without blocking the
	// connection. The zero value enforces.
	ReportOnly bool

	// Expires disables the policy from this instant on; expired policies
	// evaluate as if the hostname were not pinned. The zero value never
	// expires.
	Expires time.Time

	// ReportURIs receive violation reports.
	ReportURIs []string

	// ExcludeFromParent opts an exact hostname out of an ancestor's
	// subdomain policy. An entry with this set needs no pins; the hostname
	// evaluates as not pinned.
	ExcludeFromParent bool
}

// Expired reports whether the policy has lapsed at the given instant.
func (p *Policy) Expired(now time.Time) bool {
	return !p.Expires.IsZero() && !now.Before(p.Expires)
}
