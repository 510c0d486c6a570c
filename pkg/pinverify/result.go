// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinverify

// Result is the outcome of evaluating a server's identity against a pin set.
// The set is closed: every evaluation ends in exactly one of these values,
// and only ResultSuccess permits the connection. The zero value is not a
// valid result, so an accidentally unset Result can never read as success.
type Result int

const (
	// ResultSuccess means the chain is trusted and at least one certificate
	// in it carries a pinned public key.
	ResultSuccess Result = iota + 1

	// ResultFailed means the chain is trusted but no certificate in it
	// carries a pinned public key. This is the signature of a trusted-CA
	// man-in-the-middle or an incomplete pin set after key rotation.
	ResultFailed

	// ResultFailedChainNotTrusted means the platform trust engine evaluated
	// the chain and rejected it (untrusted root, hostname mismatch, expired
	// certificate). Pins were never consulted.
	ResultFailedChainNotTrusted

	// ResultErrorInvalidParameters means the caller's inputs were unusable
	// (nil chain, nil algorithm list, nil pin set, empty hostname) or the
	// trust engine could not run. Retrying with the same inputs cannot
	// succeed.
	ResultErrorInvalidParameters

	// ResultErrorCouldNotComputeDigest means an SPKI digest could not be
	// computed for a chain certificate. This indicates a local malfunction,
	// not an attack.
	ResultErrorCouldNotComputeDigest
)

var resultNames = map[Result]string{
	ResultSuccess:                    "success",
	ResultFailed:                     "failed",
	ResultFailedChainNotTrusted:      "failed-chain-not-trusted",
	ResultErrorInvalidParameters:     "error-invalid-parameters",
	ResultErrorCouldNotComputeDigest: "error-could-not-compute-digest",
}

// String returns a stable name used in logs and violation reports.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}
