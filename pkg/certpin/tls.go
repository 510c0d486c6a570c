// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package certpin

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"strconv"
)

// TLSConfigForHost returns a TLS config enforcing pinning for hostname on
// top of base. Platform certificate verification stays enabled: the hook
// runs after the handshake's own chain validation, re-parses the presented
// certificates, and re-validates independently rather than trusting the
// handshake's verdict. A nil base falls back to the Pinner's configured
// TLS config, then to a TLS 1.2 minimum.
func (p *Pinner) TLSConfigForHost(hostname string, base *tls.Config) *tls.Config {
	return p.pinnedTLSConfig(hostname, DefaultPort, base)
}

func (p *Pinner) pinnedTLSConfig(hostname string, port uint16, base *tls.Config) *tls.Config {
	if base == nil {
		base = p.tlsBase
	}
	var cfg *tls.Config
	if base != nil {
		cfg = base.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = hostname
	}

	cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		peer := make([]*x509.Certificate, 0, len(rawCerts))
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return fmt.Errorf("%w: parsing peer certificate: %w", ErrPinValidationFailed, err)
			}
			peer = append(peer, cert)
		}

		eval := p.evaluate(hostname, port, peer)
		if eval.Decision == DecisionBlock {
			return fmt.Errorf("%w: %s for %s", ErrPinValidationFailed, eval.Result, eval.Hostname)
		}
		return nil
	}

	return cfg
}

// DialTLSContext dials addr and runs a pinned TLS handshake, deriving the
// hostname and port from addr. It satisfies the http.Transport
// DialTLSContext signature; the Pinner's TLSConfig seeds the handshake.
func (p *Pinner) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
		portStr = strconv.Itoa(int(DefaultPort))
	}
	port64, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port64 == 0 {
		return nil, fmt.Errorf("%w: invalid port in address %q", ErrPinValidationFailed, addr)
	}
	port := uint16(port64)

	dialer := &tls.Dialer{Config: p.pinnedTLSConfig(host, port, nil)}
	return dialer.DialContext(ctx, network, net.JoinHostPort(host, portStr))
}

// Transport returns a clone of base with pinned TLS dialing installed for
// every HTTPS request. A nil base clones http.DefaultTransport.
func (p *Pinner) Transport(base *http.Transport) *http.Transport {
	var t *http.Transport
	if base != nil {
		t = base.Clone()
	} else {
		t = http.DefaultTransport.(*http.Transport).Clone()
	}
	t.DialTLSContext = p.DialTLSContext
	return t
}
