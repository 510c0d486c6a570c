// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package pinpolicy maps hostnames to certificate pinning policies. A policy
// table holds exact-hostname entries and subdomain ("*.domain") entries;
// resolution gives exact entries priority and scopes subdomain inheritance
// to the registrable-domain boundary, so a policy for "*.example.co.uk" can
// never leak across the "co.uk" registry line or be spoofed by lookalikes
// such as "example.co.uk.evil.com".
package pinpolicy

import (
	"fmt"
	"slices"
	"strings"
)

// Table is an immutable-after-construction policy table. Populate it with
// Set during construction, then share it freely: Resolve and Policy are safe
// for concurrent use as long as no Set runs concurrently.
type Table struct {
	exact     map[string]*Policy
	wildcards []wildcardEntry
	suffixes  SuffixResolver
}

// wildcardEntry pairs a subdomain pattern's domain with its policy. Entries
// stay sorted by domain so resolution order is deterministic.
type wildcardEntry struct {
	domain string
	policy *Policy
}

// NewTable creates an empty policy table. A nil resolver defaults to the
// embedded public suffix list.
func NewTable(resolver SuffixResolver) *Table {
	if resolver == nil {
		resolver = PublicSuffixList{}
	}
	return &Table{
		exact:    make(map[string]*Policy),
		suffixes: resolver,
	}
}

// Set registers a policy under a pattern, replacing any existing policy for
// the same pattern. The pattern's domain is normalized before insertion.
func (t *Table) Set(p Pattern, policy *Policy) error {
	if p.IsZero() {
		return ErrInvalidPattern
	}
	if policy == nil {
		return fmt.Errorf("%w: pattern %q", ErrNoPolicy, p)
	}
	domain, err := NormalizeHostname(p.domain)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	if p.IsExact() {
		t.exact[domain] = policy
		return nil
	}

	i, found := slices.BinarySearchFunc(t.wildcards, domain, func(e wildcardEntry, d string) int {
		return strings.Compare(e.domain, d)
	})
	if found {
		t.wildcards[i].policy = policy
		return nil
	}
	t.wildcards = slices.Insert(t.wildcards, i, wildcardEntry{domain: domain, policy: policy})
	return nil
}

// Resolve finds the pattern governing a hostname. An exact entry always wins
// over subdomain entries. Subdomain entries are consulted in lexicographic
// domain order and match only when their policy has IncludeSubdomains set
// and the hostname is a strict subdomain within the same registrable-domain
// boundary. False means the hostname is not pinned; malformed hostnames
// resolve to not pinned.
func (t *Table) Resolve(hostname string) (Pattern, bool) {
	host, err := NormalizeHostname(hostname)
	if err != nil {
		return Pattern{}, false
	}

	if _, ok := t.exact[host]; ok {
		return Exact(host), true
	}

	for _, e := range t.wildcards {
		if !e.policy.IncludeSubdomains {
			continue
		}
		if IsSubdomain(t.suffixes, host, e.domain) {
			return SubdomainsOf(e.domain), true
		}
	}
	return Pattern{}, false
}

// Policy returns the policy registered under a pattern.
func (t *Table) Policy(p Pattern) (*Policy, bool) {
	if p.IsExact() {
		policy, ok := t.exact[p.domain]
		return policy, ok
	}
	if p.IsWildcard() {
		i, found := slices.BinarySearchFunc(t.wildcards, p.domain, func(e wildcardEntry, d string) int {
			return strings.Compare(e.domain, d)
		})
		if found {
			return t.wildcards[i].policy, true
		}
	}
	return nil, false
}

// Patterns returns every registered pattern, exact entries first, each group
// sorted by domain.
func (t *Table) Patterns() []Pattern {
	out := make([]Pattern, 0, len(t.exact)+len(t.wildcards))
	exact := make([]string, 0, len(t.exact))
	for host := range t.exact {
		exact = append(exact, host)
	}
	slices.Sort(exact)
	for _, host := range exact {
		out = append(out, Exact(host))
	}
	for _, e := range t.wildcards {
		out = append(out, SubdomainsOf(e.domain))
	}
	return out
}

// Len returns the number of registered patterns.
func (t *Table) Len() int {
	return len(t.exact) + len(t.wildcards)
}
