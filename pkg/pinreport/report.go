// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package pinreport builds and delivers RFC 7469-style reports describing
// public key pin validation failures. Reports are best-effort telemetry:
// delivery never blocks or alters the connection decision that produced
// them.
package pinreport

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// Report is a pin validation failure report in the RFC 7469 JSON shape.
// The served chain is the raw certificate list the server presented; the
// validated chain is the platform-built chain when validation got that far.
type Report struct {
	// DateTime is the instant the failure was observed.
	DateTime time.Time `json:"date-time"`

	// Hostname is the host the connection was made to.
	Hostname string `json:"hostname"`

	// Port is the TCP port the connection was made to.
	Port uint16 `json:"port"`

	// EffectiveExpirationDate is the matched policy's expiry, when set.
	EffectiveExpirationDate time.Time `json:"effective-expiration-date,omitzero"`

	// IncludeSubdomains mirrors the matched policy's subdomain flag.
	IncludeSubdomains bool `json:"include-subdomains"`

	// NotedHostname is the configured pattern the hostname resolved to.
	NotedHostname string `json:"noted-hostname"`

	// ServedCertificateChain holds the PEM encoding of the chain the
	// server presented, leaf first.
	ServedCertificateChain []string `json:"served-certificate-chain"`

	// ValidatedCertificateChain holds the PEM encoding of the chain the
	// platform trust engine built, when chain building succeeded.
	ValidatedCertificateChain []string `json:"validated-certificate-chain,omitempty"`

	// KnownPins lists the policy's pins as RFC 7469 pin directives,
	// e.g. pin-sha256="qvTGHdzF6KLavt4PO0gs2a6pQ00BgL7K6vQqw8oBPCo=".
	KnownPins []string `json:"known-pins"`

	// ValidationResult names the verification outcome that triggered the
	// report.
	ValidationResult string `json:"validation-result"`

	// Enforced is false when the matched policy was report-only.
	Enforced bool `json:"enforced"`
}

// Fingerprint returns a stable identifier for the report's content, used
// to suppress duplicates. Two reports describing the same failure for the
// same host and policy fingerprint identically even when their timestamps
// differ.
func (r *Report) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%d\n%s\n%s\n%t\n", r.Hostname, r.Port, r.NotedHostname, r.ValidationResult, r.Enforced)
	for _, cert := range r.ServedCertificateChain {
		h.Write([]byte(cert))
	}
	for _, pin := range r.KnownPins {
		h.Write([]byte(pin))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CertChainPEM renders certificates as PEM strings, preserving order.
// Nil entries are skipped.
func CertChainPEM(chain []*x509.Certificate) []string {
	out := make([]string, 0, len(chain))
	for _, cert := range chain {
		if cert == nil {
			continue
		}
		block := pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}
		out = append(out, string(pem.EncodeToMemory(&block)))
	}
	return out
}

// KnownPins renders a pin set as RFC 7469 pin directives, sorted for
// stable output. Digests whose length matches no supported algorithm are
// skipped rather than rendered wrong.
func KnownPins(pins spki.PinSet) []string {
	out := make([]string, 0, pins.Len())
	for _, pin := range pins.Pins() {
		alg, b64, ok := strings.Cut(pin, "/")
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("pin-%s=%q", alg, b64))
	}
	slices.Sort(out)
	return out
}
