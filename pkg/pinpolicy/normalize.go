// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinpolicy

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// NormalizeHostname converts a raw hostname to its canonical lookup form:
// lowercase, punycode for internationalized names, no trailing dot. IP
// literals normalize through the stdlib (brackets stripped). Strings that
// are not plain hosts, anything with a scheme, port, path, or userinfo,
// are rejected with ErrInvalidHostname.
func NormalizeHostname(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("%w: empty hostname", ErrInvalidHostname)
	}

	// Drop trailing dot: "example.com." → "example.com".
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostname, raw)
	}

	// IPv6 literals come wrapped in brackets: "[2001:db8::1]".
	if len(host) > 2 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}

	// If it's an IP, let the stdlib normalize it.
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	if strings.ContainsAny(host, ":/@ \t") {
		return "", fmt.Errorf("%w: %q is not a bare hostname", ErrInvalidHostname, raw)
	}
	if strings.HasPrefix(host, ".") || strings.Contains(host, "..") {
		return "", fmt.Errorf("%w: %q has an empty label", ErrInvalidHostname, raw)
	}

	// ASCII-only host: lowercase in place and skip IDNA.
	if isASCII(host) {
		b := []byte(host)
		for i := 0; i < len(b); i++ {
			c := b[i]
			if c >= 'A' && c <= 'Z' {
				b[i] = c + 32
			}
		}
		return string(b), nil
	}

	// Non-ASCII: delegate to IDNA and then lowercase.
	asciiHost, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: idna: %w", ErrInvalidHostname, err)
	}
	return strings.ToLower(asciiHost), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
