// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package certpin

// Decision is the connection disposition produced by evaluating a peer
// chain against local pinning policy. The zero value is not a valid
// decision, so an accidentally unset Decision can never read as allow.
type Decision int

const (
	// DecisionAllow permits the connection: verification succeeded, or the
	// matched policy is report-only and records the mismatch instead of
	// blocking.
	DecisionAllow Decision = iota + 1

	// DecisionBlock rejects the connection.
	DecisionBlock

	// DecisionNotPinned means no enforceable policy applies to the
	// hostname. The platform verdict alone governs the connection.
	DecisionNotPinned
)

var decisionNames = map[Decision]string{
	DecisionAllow:     "allow",
	DecisionBlock:     "block",
	DecisionNotPinned: "not-pinned",
}

// String returns a stable name used in logs.
func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return "unknown"
}
