// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinreport

import "errors"

var (
	// ErrNoReport is returned when a nil report is submitted for delivery.
	ErrNoReport = errors.New("pinreport: no report provided")

	// ErrNoReportURIs is returned when delivery is requested with an empty
	// URI list.
	ErrNoReportURIs = errors.New("pinreport: no report URIs provided")

	// ErrReportFailed is returned when a report could not be delivered to
	// any of the configured URIs. Partial delivery is not a failure.
	ErrReportFailed = errors.New("pinreport: report delivery failed")
)
