// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package certpin

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-certpin/pkg/pinpolicy"
	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// PolicyConfig is one pinned-domain entry in the configuration schema.
type PolicyConfig struct {
	// IncludeSubdomains extends an exact entry to its strict subdomains.
	// Subdomain ("*.domain") keys always include subdomains.
	IncludeSubdomains bool `yaml:"include_subdomains,omitempty"`

	// Algorithms lists the digest algorithms to evaluate. Default: [sha256].
	Algorithms []string `yaml:"algorithms,omitempty"`

	// ReportOnly records violations without blocking connections.
	ReportOnly bool `yaml:"report_only,omitempty"`

	// Expires disables the policy from this instant on (RFC 3339).
	Expires time.Time `yaml:"expires,omitempty"`

	// ReportURIs receive violation reports. Absolute http(s) URLs.
	ReportURIs []string `yaml:"report_uris,omitempty"`

	// ExcludeSubdomainFromParent opts this exact hostname out of an
	// ancestor's subdomain policy. Exclusion entries carry no pins.
	ExcludeSubdomainFromParent bool `yaml:"exclude_subdomain_from_parent,omitempty"`

	// Pins lists the allowed SPKI digests: "sha256/<base64>", bare hex, or
	// bare base64.
	Pins []string `yaml:"pins,omitempty"`
}

// Config is the on-disk pinning configuration:
//
//	pinned_domains:
//	  example.com:
//	    include_subdomains: true
//	    algorithms: [sha256]
//	    pins:
//	      - sha256/2kOi4HdYYsvTR1sTIR7RHwlf2SescTrpza9ZrWy7poQ=
//	      - 5a3cca71ad4c1d9a483c6476acb6431f6bbd37f5f8b1ad4b0c8ba4bdcd85bbee
type Config struct {
	// PinnedDomains maps a hostname or "*.domain" pattern to its policy.
	PinnedDomains map[string]PolicyConfig `yaml:"pinned_domains"`
}

// LoadConfig reads and validates a pinning configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates pinning configuration. Validation
// enforces the policy rules the runtime table does not: algorithms must be
// known, pins must parse, enforcing policies need at least two distinct
// pins (one backup), domains must have a registrable part, exclusion
// entries stay bare, and subdomain scopes must not nest.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(cfg.PinnedDomains) == 0 {
		return nil, ErrNoPinnedDomains
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	psl := pinpolicy.PublicSuffixList{}

	keys := make([]string, 0, len(c.PinnedDomains))
	for key := range c.PinnedDomains {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	// Subdomain scopes declared across all entries, for the overlap check.
	scopes := make([]string, 0, len(keys))

	for _, key := range keys {
		entry := c.PinnedDomains[key]

		pat, err := pinpolicy.ParsePattern(key)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}
		if _, err := psl.PublicSuffix(pat.Domain()); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}

		if err := validateEntry(key, pat, entry); err != nil {
			return err
		}

		if pat.IsWildcard() || entry.IncludeSubdomains {
			scopes = append(scopes, pat.Domain())
		}
	}

	for i := 0; i < len(scopes); i++ {
		for j := i + 1; j < len(scopes); j++ {
			a, b := scopes[i], scopes[j]
			if a == b {
				return fmt.Errorf("%w: duplicate subdomain scope %q", ErrInvalidConfig, "*."+a)
			}
			if pinpolicy.IsSubdomain(psl, a, b) || pinpolicy.IsSubdomain(psl, b, a) {
				return fmt.Errorf("%w: subdomain scopes %q and %q overlap", ErrInvalidConfig, "*."+a, "*."+b)
			}
		}
	}
	return nil
}

func validateEntry(key string, pat pinpolicy.Pattern, entry PolicyConfig) error {
	for _, alg := range entry.Algorithms {
		if _, err := spki.ParseAlgorithm(alg); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}
	}
	for _, uri := range entry.ReportURIs {
		u, err := url.Parse(uri)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q: report URI %q is not an absolute http(s) URL", ErrInvalidConfig, key, uri)
		}
	}

	if entry.ExcludeSubdomainFromParent {
		if pat.IsWildcard() {
			return fmt.Errorf("%w: %q: exclude_subdomain_from_parent applies to exact hostnames only", ErrInvalidConfig, key)
		}
		if entry.IncludeSubdomains {
			return fmt.Errorf("%w: %q: exclusion entries cannot include subdomains", ErrInvalidConfig, key)
		}
		if len(entry.Pins) > 0 {
			return fmt.Errorf("%w: %q: exclusion entries carry no pins", ErrInvalidConfig, key)
		}
		return nil
	}

	pins, err := spki.ParsePinSet(entry.Pins)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
	}
	need := 2
	if entry.ReportOnly {
		need = 1
	}
	if pins.Len() < need {
		if entry.ReportOnly {
			return fmt.Errorf("%w: %q: report-only policies need at least one pin", ErrInvalidConfig, key)
		}
		return fmt.Errorf("%w: %q: enforcing policies need at least two distinct pins (one backup)", ErrInvalidConfig, key)
	}
	return nil
}

// Table builds the policy table the configuration describes. An exact entry
// with include_subdomains set registers twice, once exactly and once as a
// subdomain scope, sharing one policy. A nil resolver defaults to the
// embedded public suffix list.
func (c *Config) Table(resolver pinpolicy.SuffixResolver) (*pinpolicy.Table, error) {
	table := pinpolicy.NewTable(resolver)

	for key, entry := range c.PinnedDomains {
		pat, err := pinpolicy.ParsePattern(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}
		policy, err := entry.policy(pat)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}

		if err := table.Set(pat, policy); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
		}
		if pat.IsExact() && entry.IncludeSubdomains {
			if err := table.Set(pinpolicy.SubdomainsOf(pat.Domain()), policy); err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConfig, key, err)
			}
		}
	}
	return table, nil
}

// policy converts one entry into its runtime form.
func (e PolicyConfig) policy(pat pinpolicy.Pattern) (*pinpolicy.Policy, error) {
	algorithms := make([]spki.Algorithm, 0, len(e.Algorithms))
	for _, raw := range e.Algorithms {
		alg, err := spki.ParseAlgorithm(raw)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, alg)
	}
	if len(algorithms) == 0 {
		algorithms = []spki.Algorithm{spki.SHA256}
	}

	var pins spki.PinSet
	if !e.ExcludeSubdomainFromParent {
		var err error
		pins, err = spki.ParsePinSet(e.Pins)
		if err != nil {
			return nil, err
		}
	}

	return &pinpolicy.Policy{
		IncludeSubdomains: e.IncludeSubdomains || pat.IsWildcard(),
		Algorithms:        algorithms,
		Pins:              pins,
		ReportOnly:        e.ReportOnly,
		Expires:           e.Expires,
		ReportURIs:        e.ReportURIs,
		ExcludeFromParent: e.ExcludeSubdomainFromParent,
	}, nil
}
