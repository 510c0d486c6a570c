// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package main

import "errors"

// Exit codes for the CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitPinFailure indicates a pinned host presented a chain that failed
	// pin validation.
	ExitPinFailure = 1

	// ExitConfigError indicates a configuration or input validation error.
	ExitConfigError = 2
)

// Sentinel errors for CLI operations.
var (
	// ErrInvalidInput is returned when required input parameters are missing or invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPinFailure is returned when pin validation blocks a connection.
	ErrPinFailure = errors.New("pin validation failed")

	// ErrConnectFailed is returned when a TLS connection cannot be established.
	ErrConnectFailed = errors.New("connection failed")

	// ErrLookupFailed is returned when a DNS pin discovery lookup fails.
	ErrLookupFailed = errors.New("lookup failed")

	// ErrFileOperation is returned when a file read or write operation fails.
	ErrFileOperation = errors.New("file operation failed")
)
