// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinverify

import "errors"

var (
	// ErrNoPeerCertificates is returned by chain validators handed an empty
	// peer chain.
	ErrNoPeerCertificates = errors.New("pinverify: no peer certificates")

	// ErrPlatformUnavailable wraps failures where the platform trust engine
	// could not evaluate the chain at all, as opposed to evaluating it and
	// rejecting it.
	ErrPlatformUnavailable = errors.New("pinverify: platform trust engine unavailable")
)
