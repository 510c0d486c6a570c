// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinpolicy

import "errors"

var (
	// ErrInvalidHostname is returned when a hostname is empty, carries a
	// scheme, port, or userinfo, or fails IDNA conversion.
	ErrInvalidHostname = errors.New("pinpolicy: invalid hostname")

	// ErrInvalidPattern is returned for a zero or malformed policy pattern.
	ErrInvalidPattern = errors.New("pinpolicy: invalid pattern")

	// ErrNoPolicy is returned when a nil policy is registered.
	ErrNoPolicy = errors.New("pinpolicy: no policy provided")

	// ErrNoRegistrableDomain is returned when a hostname sits at or above
	// the public-suffix boundary and therefore has no registrable part.
	ErrNoRegistrableDomain = errors.New("pinpolicy: hostname has no registrable domain")
)
