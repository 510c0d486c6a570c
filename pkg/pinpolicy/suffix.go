// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinpolicy

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SuffixResolver reports the registry-controlled (public) suffix of a
// hostname: "co.uk" for "store.example.co.uk". An error means the hostname
// has no registrable part, a bare public suffix, an IP literal, or garbage,
// and suffix-scoped matching must treat it as matching nothing.
type SuffixResolver interface {
	PublicSuffix(hostname string) (string, error)
}

// PublicSuffixList resolves suffixes against the embedded copy of the
// Mozilla Public Suffix List. The zero value is ready to use.
type PublicSuffixList struct{}

// PublicSuffix implements SuffixResolver.
func (PublicSuffixList) PublicSuffix(hostname string) (string, error) {
	if hostname == "" || strings.HasPrefix(hostname, ".") || strings.HasSuffix(hostname, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostname, hostname)
	}
	if net.ParseIP(hostname) != nil {
		return "", fmt.Errorf("%w: %q is an IP literal", ErrNoRegistrableDomain, hostname)
	}
	suffix, _ := publicsuffix.PublicSuffix(hostname)
	if suffix == "" || suffix == hostname {
		return "", fmt.Errorf("%w: %q", ErrNoRegistrableDomain, hostname)
	}
	return suffix, nil
}

// IsSubdomain reports whether hostname is a strict subdomain of ancestor.
// Both must share the same registry suffix, and the comparison runs on the
// labels left of it, so "deep.example.co.uk" is a subdomain of
// "example.co.uk" while "example.com.evil.com" is not a subdomain of
// "example.com" and "foo.co.jp" never relates to anything under "co.uk".
// A hostname is not a subdomain of itself. Hostnames for which the resolver
// fails match nothing.
func IsSubdomain(r SuffixResolver, hostname, ancestor string) bool {
	if hostname == ancestor {
		return false
	}
	hostSuffix, err := r.PublicSuffix(hostname)
	if err != nil {
		return false
	}
	ancestorSuffix, err := r.PublicSuffix(ancestor)
	if err != nil {
		return false
	}
	if hostSuffix != ancestorSuffix {
		return false
	}

	hostLabels, ok := strings.CutSuffix(hostname, "."+hostSuffix)
	if !ok {
		return false
	}
	ancestorLabels, ok := strings.CutSuffix(ancestor, "."+ancestorSuffix)
	if !ok {
		return false
	}
	return strings.HasSuffix(hostLabels, "."+ancestorLabels)
}
