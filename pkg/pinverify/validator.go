// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinverify

import (
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ChainValidator runs platform trust evaluation over a peer certificate
// chain. Implementations must enforce hostname verification for the given
// hostname regardless of how the chain was evaluated during the handshake;
// pinning re-validates from scratch rather than trusting earlier results.
//
// The returned chain is ordered leaf first and contains only certificates
// the trust engine accepted. trusted=false with a nil error means the engine
// evaluated the chain and rejected it; a non-nil error means the engine
// could not run at all.
type ChainValidator interface {
	Validate(peer []*x509.Certificate, hostname string) (chain []*x509.Certificate, trusted bool, err error)
}

// PlatformValidatorConfig configures a PlatformValidator.
type PlatformValidatorConfig struct {
	// Roots is the trust anchor pool. Nil uses the system root store.
	Roots *x509.CertPool

	// Now supplies the validation time. Defaults to time.Now.
	Now func() time.Time

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// PlatformValidator is a ChainValidator backed by the standard library's
// X.509 path building against the platform root store.
type PlatformValidator struct {
	roots  *x509.CertPool
	now    func() time.Time
	logger *slog.Logger
}

// NewPlatformValidator creates a PlatformValidator. A nil config validates
// against the system roots at the current time.
func NewPlatformValidator(cfg *PlatformValidatorConfig) *PlatformValidator {
	if cfg == nil {
		cfg = &PlatformValidatorConfig{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PlatformValidator{
		roots:  cfg.Roots,
		now:    cfg.Now,
		logger: cfg.Logger.With("component", "platform_validator"),
	}
}

// Validate builds and verifies a path from the peer's leaf certificate to a
// trust anchor, with the remaining peer certificates as candidate
// intermediates and the hostname checked against the leaf. Only a trust
// engine malfunction (e.g. system roots unavailable) returns an error;
// verification rejections return trusted=false.
func (v *PlatformValidator) Validate(peer []*x509.Certificate, hostname string) ([]*x509.Certificate, bool, error) {
	if len(peer) == 0 {
		return nil, false, ErrNoPeerCertificates
	}

	intermediates := x509.NewCertPool()
	for _, cert := range peer[1:] {
		intermediates.AddCert(cert)
	}

	chains, err := peer[0].Verify(x509.VerifyOptions{
		DNSName:       hostname,
		Roots:         v.roots,
		Intermediates: intermediates,
		CurrentTime:   v.now(),
	})
	if err != nil {
		var sysErr x509.SystemRootsError
		if errors.As(err, &sysErr) {
			return nil, false, fmt.Errorf("%w: %w", ErrPlatformUnavailable, err)
		}
		v.logger.Debug("chain rejected by trust engine",
			"hostname", hostname,
			"error", err)
		return nil, false, nil
	}

	// Multiple paths can exist when roots are cross-signed; the first is
	// the preferred one.
	return chains[0], true, nil
}
