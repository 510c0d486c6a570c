// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

// Package pinverify decides whether a TLS server's certificate chain
// satisfies a public-key pin set. Verification is defense in depth on top
// of platform trust: the chain is re-validated against the trust store with
// strict hostname checking, and only then is the validated chain searched,
// root first, for a certificate whose SPKI digest appears in the pin set.
// Outcomes are values of the closed Result type rather than errors, so
// callers distinguish "trusted but unpinned" from "untrusted" from local
// malfunction without string matching.
package pinverify

import (
	"crypto/x509"
	"log/slog"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Validator performs platform chain validation. Defaults to a
	// PlatformValidator over the system roots.
	Validator ChainValidator

	// Digester computes SPKI digests. Defaults to spki.ComputeDigest;
	// supply a spki.HashCache to memoize across handshakes.
	Digester spki.Digester

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Verifier evaluates peer certificate chains against pin sets. Safe for
// concurrent use.
type Verifier struct {
	validator ChainValidator
	digester  spki.Digester
	logger    *slog.Logger
}

// NewVerifier creates a Verifier. A nil config uses defaults throughout.
func NewVerifier(cfg *VerifierConfig) *Verifier {
	if cfg == nil {
		cfg = &VerifierConfig{}
	}
	if cfg.Validator == nil {
		cfg.Validator = NewPlatformValidator(nil)
	}
	if cfg.Digester == nil {
		cfg.Digester = spki.DigestFunc(spki.ComputeDigest)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Verifier{
		validator: cfg.Validator,
		digester:  cfg.Digester,
		logger:    cfg.Logger.With("component", "pin_verifier"),
	}
}

// Verify evaluates the peer chain presented for hostname against the pinned
// digests. The chain is re-validated by the platform trust engine first; a
// chain the engine rejects is ResultFailedChainNotTrusted and its pins are
// never consulted. The validated chain is then walked from the root toward
// the leaf, trying each algorithm in the listed order, and the first pinned
// digest wins.
//
// Nil inputs (peer, algorithms, pins) and an empty hostname are caller bugs
// and return ResultErrorInvalidParameters. Empty but non-nil algorithm or
// pin collections are valid inputs that simply cannot match, yielding
// ResultFailed on a trusted chain.
func (v *Verifier) Verify(peer []*x509.Certificate, hostname string, algorithms []spki.Algorithm, pins spki.PinSet) Result {
	if len(peer) == 0 || hostname == "" || algorithms == nil || pins == nil {
		return ResultErrorInvalidParameters
	}
	for _, cert := range peer {
		if cert == nil {
			return ResultErrorInvalidParameters
		}
	}

	chain, trusted, err := v.validator.Validate(peer, hostname)
	if err != nil {
		v.logger.Error("platform validation could not run",
			"hostname", hostname,
			"error", err)
		return ResultErrorInvalidParameters
	}
	if !trusted {
		v.logger.Warn("certificate chain not trusted", "hostname", hostname)
		return ResultFailedChainNotTrusted
	}
	if len(chain) == 0 {
		return ResultErrorInvalidParameters
	}

	// Root first: organizations pin their CA keys far more often than leaf
	// keys, and the anchor end of the chain is the stable end.
	for i := len(chain) - 1; i >= 0; i-- {
		for _, alg := range algorithms {
			digest, err := v.digester.Digest(chain[i], alg)
			if err != nil {
				v.logger.Error("SPKI digest computation failed",
					"hostname", hostname,
					"algorithm", alg,
					"error", err)
				return ResultErrorCouldNotComputeDigest
			}
			if pins.Contains(digest) {
				v.logger.Debug("pin matched",
					"hostname", hostname,
					"algorithm", alg,
					"pin", digest.String())
				return ResultSuccess
			}
		}
	}

	v.logger.Warn("no pinned key in trusted chain",
		"hostname", hostname,
		"chain_length", len(chain),
		"pins", len(pins))
	return ResultFailed
}
