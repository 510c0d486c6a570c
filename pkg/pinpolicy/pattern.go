// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinpolicy

import (
	"fmt"
	"strings"
)

type patternKind uint8

const (
	kindExact patternKind = iota + 1
	kindSubdomains
)

// Pattern identifies a policy table entry: either a single exact hostname or
// the strict subdomains of a domain. Patterns are comparable and can key
// maps. The zero Pattern matches nothing.
type Pattern struct {
	kind   patternKind
	domain string
}

// Exact returns a pattern matching exactly one hostname.
func Exact(hostname string) Pattern {
	return Pattern{kind: kindExact, domain: hostname}
}

// SubdomainsOf returns a pattern matching the strict subdomains of domain.
// It never matches domain itself; pin the apex with a separate Exact entry.
func SubdomainsOf(domain string) Pattern {
	return Pattern{kind: kindSubdomains, domain: domain}
}

// ParsePattern parses the configuration form of a pattern: "hostname" for an
// exact entry or "*.domain" for a subdomain entry. The domain is normalized
// with NormalizeHostname.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "*."); ok {
		domain, err := NormalizeHostname(rest)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		return SubdomainsOf(domain), nil
	}
	if strings.Contains(s, "*") {
		return Pattern{}, fmt.Errorf("%w: %q (only a leading \"*.\" is supported)", ErrInvalidPattern, s)
	}
	host, err := NormalizeHostname(s)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return Exact(host), nil
}

// IsZero reports whether the pattern is the zero value.
func (p Pattern) IsZero() bool {
	return p.kind == 0
}

// IsExact reports whether the pattern matches a single hostname.
func (p Pattern) IsExact() bool {
	return p.kind == kindExact
}

// IsWildcard reports whether the pattern matches subdomains.
func (p Pattern) IsWildcard() bool {
	return p.kind == kindSubdomains
}

// Domain returns the hostname or domain the pattern was built from.
func (p Pattern) Domain() string {
	return p.domain
}

// String renders the configuration form: "hostname" or "*.domain".
func (p Pattern) String() string {
	switch p.kind {
	case kindExact:
		return p.domain
	case kindSubdomains:
		return "*." + p.domain
	default:
		return ""
	}
}
