// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package certpin evaluates TLS server chains against locally configured
// public key pins. It ties the policy table, the pin verifier, and the
// violation reporter together into a per-connection decision, and exposes
// tls.Config, dialer, and http.Transport integration so clients adopt
// pinning without re-implementing the control flow.
package certpin

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jeremyhahn/go-certpin/pkg/pinpolicy"
	"github.com/jeremyhahn/go-certpin/pkg/pinreport"
	"github.com/jeremyhahn/go-certpin/pkg/pinverify"
)

const (
	// DefaultPort is assumed when no port accompanies a hostname.
	DefaultPort uint16 = 443

	// DefaultReportTimeout bounds one asynchronous report dispatch.
	DefaultReportTimeout = 10 * time.Second
)

// Reporter delivers violation reports. *pinreport.HTTPReporter implements it.
type Reporter interface {
	Report(ctx context.Context, uris []string, report *pinreport.Report) error
}

// Evaluation is the outcome of checking one peer chain against policy.
type Evaluation struct {
	// Hostname is the normalized hostname the evaluation ran against, or
	// the raw input when normalization failed.
	Hostname string

	// Key is the policy table pattern the hostname resolved to. Zero when
	// the hostname is not pinned.
	Key pinpolicy.Pattern

	// Policy is the matched policy. Nil when the hostname resolved to no
	// entry; set even when the entry yields DecisionNotPinned through
	// opt-out or expiry.
	Policy *pinpolicy.Policy

	// Result is the verifier's verdict. Zero when verification never ran.
	Result pinverify.Result

	// Decision is the connection disposition.
	Decision Decision
}

// PinnerConfig configures a Pinner.
type PinnerConfig struct {
	// Table is the resolved policy table. Required.
	Table *pinpolicy.Table

	// Verifier checks peer chains against pins. Defaults to
	// pinverify.NewVerifier(nil), which validates against system roots.
	Verifier *pinverify.Verifier

	// Reporter receives violation reports. Nil disables reporting.
	Reporter Reporter

	// ReportTimeout bounds each asynchronous report dispatch. Defaults to
	// DefaultReportTimeout.
	ReportTimeout time.Duration

	// TLSConfig seeds the TLS configuration for pinned connections made
	// through DialTLSContext and Transport, and for TLSConfigForHost calls
	// with a nil base. Nil starts from a TLS 1.2 minimum config.
	TLSConfig *tls.Config

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// Now supplies the current time for policy expiry checks. Defaults to
	// time.Now.
	Now func() time.Time
}

// Pinner evaluates peer chains against the policy table and produces
// connection decisions. Safe for concurrent use.
type Pinner struct {
	table         *pinpolicy.Table
	verifier      *pinverify.Verifier
	reporter      Reporter
	reportTimeout time.Duration
	tlsBase       *tls.Config
	logger        *slog.Logger
	now           func() time.Time

	reports sync.WaitGroup
}

// NewPinner creates a Pinner. The config must carry a policy table.
func NewPinner(cfg *PinnerConfig) (*Pinner, error) {
	if cfg == nil || cfg.Table == nil {
		return nil, fmt.Errorf("%w: policy table is required", ErrInvalidConfig)
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = pinverify.NewVerifier(nil)
	}
	reportTimeout := cfg.ReportTimeout
	if reportTimeout == 0 {
		reportTimeout = DefaultReportTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pinner{
		table:         cfg.Table,
		verifier:      verifier,
		reporter:      cfg.Reporter,
		reportTimeout: reportTimeout,
		tlsBase:       cfg.TLSConfig,
		logger:        logger.With("component", "pinner"),
		now:           now,
	}, nil
}

// Evaluate checks the peer chain presented for hostname against policy.
// Hostnames that resolve to no entry, opt-out entries, and expired policies
// all yield DecisionNotPinned: the caller's platform verdict governs alone.
// For pinned hostnames the verifier runs and its result maps onto a
// decision, with report-only policies downgrading a pin mismatch to
// DecisionAllow.
func (p *Pinner) Evaluate(hostname string, peer []*x509.Certificate) Evaluation {
	return p.evaluate(hostname, DefaultPort, peer)
}

func (p *Pinner) evaluate(hostname string, port uint16, peer []*x509.Certificate) Evaluation {
	normalized, err := pinpolicy.NormalizeHostname(hostname)
	if err != nil {
		p.logger.Debug("hostname did not normalize, not pinned", "hostname", hostname, "error", err)
		return Evaluation{Hostname: hostname, Decision: DecisionNotPinned}
	}

	eval := Evaluation{Hostname: normalized, Decision: DecisionNotPinned}

	key, ok := p.table.Resolve(normalized)
	if !ok {
		return eval
	}
	policy, ok := p.table.Policy(key)
	if !ok {
		return eval
	}
	eval.Key = key
	eval.Policy = policy

	if policy.ExcludeFromParent {
		p.logger.Debug("hostname opted out of parent policy", "hostname", normalized, "key", key.String())
		return eval
	}
	if policy.Expired(p.now()) {
		p.logger.Info("pin policy expired, not pinned", "hostname", normalized, "key", key.String(), "expires", policy.Expires)
		return eval
	}

	eval.Result = p.verifier.Verify(peer, normalized, policy.Algorithms, policy.Pins)
	eval.Decision = decide(eval.Result, policy.ReportOnly)

	p.logger.Info("pin evaluation",
		"hostname", normalized,
		"key", key.String(),
		"result", eval.Result.String(),
		"decision", eval.Decision.String(),
		"report_only", policy.ReportOnly)

	if p.reporter != nil && reportable(eval.Result) && len(policy.ReportURIs) > 0 {
		p.dispatchReport(normalized, port, key, policy, eval.Result, peer)
	}

	return eval
}

// decide maps a verification result onto a connection decision. Only a
// trusted-but-unpinned chain is eligible for the report-only downgrade;
// every other non-success result blocks.
func decide(result pinverify.Result, reportOnly bool) Decision {
	switch result {
	case pinverify.ResultSuccess:
		return DecisionAllow
	case pinverify.ResultFailed:
		if reportOnly {
			return DecisionAllow
		}
		return DecisionBlock
	default:
		return DecisionBlock
	}
}

// reportable limits reporting to genuine pin violations. Parameter and
// digest errors are local malfunctions a collector cannot act on.
func reportable(result pinverify.Result) bool {
	return result == pinverify.ResultFailed || result == pinverify.ResultFailedChainNotTrusted
}

// dispatchReport sends a violation report without holding up the caller.
// The goroutine carries its own timeout; Close waits for stragglers.
func (p *Pinner) dispatchReport(hostname string, port uint16, key pinpolicy.Pattern, policy *pinpolicy.Policy, result pinverify.Result, peer []*x509.Certificate) {
	report := &pinreport.Report{
		DateTime:                p.now().UTC(),
		Hostname:                hostname,
		Port:                    port,
		EffectiveExpirationDate: policy.Expires,
		IncludeSubdomains:       policy.IncludeSubdomains,
		NotedHostname:           key.Domain(),
		ServedCertificateChain:  pinreport.CertChainPEM(peer),
		KnownPins:               pinreport.KnownPins(policy.Pins),
		ValidationResult:        result.String(),
		Enforced:                !policy.ReportOnly,
	}
	uris := policy.ReportURIs

	p.reports.Add(1)
	go func() {
		defer p.reports.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.reportTimeout)
		defer cancel()
		if err := p.reporter.Report(ctx, uris, report); err != nil {
			p.logger.Warn("violation report dispatch failed", "hostname", hostname, "error", err)
		}
	}()
}

// Close waits for in-flight violation reports to finish.
func (p *Pinner) Close() error {
	p.reports.Wait()
	return nil
}
