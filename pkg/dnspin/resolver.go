// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package dnspin

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

const (
	// defaultTimeout is the default DNS query timeout.
	defaultTimeout = 5 * time.Second

	// defaultDNSPort is the standard DNS port.
	defaultDNSPort = "53"

	// defaultDoTPort is the standard DNS-over-TLS port.
	defaultDoTPort = "853"
)

// Resolver discovers published pin material through DNS TLSA lookups, with
// DNSSEC validation required by default and optional DNS-over-TLS support.
type Resolver struct {
	config *ResolverConfig
	client *dns.Client
	server string
	logger *slog.Logger
}

// NewResolver creates a pin discovery resolver with the given configuration.
// It validates the configuration and applies defaults for any unset fields
// (timeout defaults to 5 seconds; an empty server falls back to the system
// resolver).
func NewResolver(cfg *ResolverConfig) (*Resolver, error) {
	if cfg == nil {
		return nil, ErrResolverConfig
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &dns.Client{
		Timeout: timeout,
	}

	server := cfg.Server

	if cfg.UseTLS {
		client.Net = "tcp-tls"
		tlsCfg := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if cfg.TLSServerName != "" {
			tlsCfg.ServerName = cfg.TLSServerName
		}
		client.TLSConfig = tlsCfg

		// Ensure DoT port if server is specified without port.
		if server != "" && !strings.Contains(server, ":") {
			server = server + ":" + defaultDoTPort
		}
	} else {
		client.Net = "udp"
		// Ensure DNS port if server is specified without port.
		if server != "" && !strings.Contains(server, ":") {
			server = server + ":" + defaultDNSPort
		}
	}

	// If no server specified, resolve from system configuration.
	if server == "" {
		systemCfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResolverConfig, err.Error())
		}
		if len(systemCfg.Servers) == 0 {
			return nil, fmt.Errorf("%w: no nameservers in /etc/resolv.conf", ErrResolverConfig)
		}
		port := systemCfg.Port
		if port == "" {
			port = defaultDNSPort
		}
		server = systemCfg.Servers[0] + ":" + port
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		config: cfg,
		client: client,
		server: server,
		logger: logger.With("component", "dnspin_resolver"),
	}, nil
}

// LookupPins queries DNS for the TLSA records at "_<port>._tcp.<hostname>."
// per RFC 6698 Section 3 and converts the usable ones into a pin set. A
// record is usable when it selects the SPKI (selector 1) and asserts a DANE
// usage (2 or 3): SHA-256 and SHA-512 payloads become pins directly, while
// exact-match payloads carry the full SPKI and are hashed into a SHA-256
// pin. Unless SkipDNSSEC is set, the response must carry the Authenticated
// Data flag.
func (r *Resolver) LookupPins(ctx context.Context, hostname string, port uint16) (*Discovered, error) {
	if hostname == "" {
		return nil, ErrInvalidHostname
	}
	if strings.ContainsRune(hostname, 0) {
		return nil, ErrInvalidHostname
	}
	if len(hostname) > 253 {
		return nil, ErrInvalidHostname
	}
	if port == 0 {
		return nil, ErrInvalidPort
	}

	qname := formatTLSAName(hostname, port)

	msg := new(dns.Msg)
	msg.SetQuestion(qname, dns.TypeTLSA)
	msg.SetEdns0(4096, true) // Enable DNSSEC OK (DO) bit.
	msg.RecursionDesired = true

	r.logger.Debug("querying TLSA records", "qname", qname, "server", r.server)

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err.Error())
	}

	if resp == nil {
		return nil, ErrLookupFailed
	}

	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: rcode %s", ErrLookupFailed, dns.RcodeToString[resp.Rcode])
	}

	if !r.config.SkipDNSSEC && !resp.AuthenticatedData {
		return nil, ErrDNSSECRequired
	}

	pins := spki.NewPinSet()
	algorithms := make(map[spki.Algorithm]struct{})
	for _, rr := range resp.Answer {
		tlsa, ok := rr.(*dns.TLSA)
		if !ok {
			continue
		}
		d, alg, ok := pinFromRecord(tlsa)
		if !ok {
			continue
		}
		pins.Add(d)
		algorithms[alg] = struct{}{}
	}

	if pins.Len() == 0 {
		return nil, ErrNoPins
	}

	algs := make([]spki.Algorithm, 0, len(algorithms))
	for alg := range algorithms {
		algs = append(algs, alg)
	}
	slices.Sort(algs)

	r.logger.Info("discovered pins", "hostname", hostname, "port", port, "pins", pins.Len())

	return &Discovered{
		Hostname:   hostname,
		Port:       port,
		Algorithms: algs,
		Pins:       pins,
	}, nil
}

// pinFromRecord converts one TLSA record into a pin. Records with a
// non-SPKI selector or a PKIX usage are ignored, as are hash payloads whose
// length does not match their declared matching type.
func pinFromRecord(tlsa *dns.TLSA) (spki.Digest, spki.Algorithm, bool) {
	if tlsa.Selector != SelectorSPKI {
		return "", "", false
	}
	if tlsa.Usage != UsageDANETA && tlsa.Usage != UsageDANEEE {
		return "", "", false
	}
	payload, err := hex.DecodeString(tlsa.Certificate)
	if err != nil {
		return "", "", false
	}

	switch tlsa.MatchingType {
	case MatchingSHA256:
		if len(payload) != sha256.Size {
			return "", "", false
		}
		return spki.Digest(payload), spki.SHA256, true
	case MatchingSHA512:
		if len(payload) != sha512.Size {
			return "", "", false
		}
		return spki.Digest(payload), spki.SHA512, true
	case MatchingExact:
		d, err := spki.Sum(payload, spki.SHA256)
		if err != nil {
			return "", "", false
		}
		return d, spki.SHA256, true
	}
	return "", "", false
}

// formatTLSAName constructs the DNS owner name for a TLSA query per RFC 6698.
// The format is "_<port>._tcp.<hostname>." with a trailing dot to form an
// absolute DNS name.
func formatTLSAName(hostname string, port uint16) string {
	// Ensure hostname ends with a dot for an absolute DNS name.
	if !strings.HasSuffix(hostname, ".") {
		hostname += "."
	}
	return fmt.Sprintf("_%d._tcp.%s", port, hostname)
}
