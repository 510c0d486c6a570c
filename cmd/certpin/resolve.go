// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-certpin/pkg/certpin"
	"github.com/jeremyhahn/go-certpin/pkg/pinpolicy"
)

// resolveCmd shows which pinning policy governs a hostname.
var resolveCmd = &cobra.Command{
	Use:   "resolve <hostname>",
	Short: "Show which pinning policy governs a hostname",
	Long: `Resolve a hostname against a pinning configuration and display the
governing entry, if any.

Lookup rules: an exact hostname entry always wins; otherwise "*.domain"
entries (and exact entries with include_subdomains) cover strict
subdomains within the same registrable domain. A hostname with no entry
is not pinned and is subject to default platform trust only.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("config", "", "path to pinning configuration file (required)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	if configFile == "" {
		return fmt.Errorf("%w: --config is required", ErrInvalidInput)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: exactly one hostname argument is required", ErrInvalidInput)
	}
	hostname := args[0]

	table, err := loadPolicyTable(configFile)
	if err != nil {
		return err
	}

	slog.Debug("resolving hostname against policy table", "hostname", hostname, "entries", table.Len())

	key, ok := table.Resolve(hostname)
	if !ok {
		fmt.Printf("Hostname: %s\n", hostname)
		fmt.Printf("Status:   not pinned\n")
		return nil
	}

	policy, ok := table.Policy(key)
	if !ok {
		return fmt.Errorf("%w: no policy registered for %q", ErrInvalidInput, key)
	}

	mode := "enforce"
	switch {
	case policy.ExcludeFromParent:
		mode = "excluded"
	case policy.ReportOnly:
		mode = "report-only"
	}

	fmt.Printf("Hostname:   %s\n", hostname)
	fmt.Printf("Status:     pinned\n")
	fmt.Printf("Key:        %s\n", key)
	fmt.Printf("Mode:       %s\n", mode)
	if len(policy.Algorithms) > 0 {
		names := make([]string, len(policy.Algorithms))
		for i, alg := range policy.Algorithms {
			names[i] = alg.String()
		}
		fmt.Printf("Algorithms: %s\n", strings.Join(names, ", "))
	}
	if policy.Pins.Len() > 0 {
		fmt.Println("Pins:")
		for _, pin := range policy.Pins.Pins() {
			fmt.Printf("  %s\n", pin)
		}
	}
	if !policy.Expires.IsZero() {
		fmt.Printf("Expires:    %s\n", policy.Expires.Format(time.RFC3339))
	}
	for _, uri := range policy.ReportURIs {
		fmt.Printf("Report URI: %s\n", uri)
	}
	return nil
}

// loadPolicyTable loads and validates a pinning configuration file and
// builds its lookup table.
func loadPolicyTable(path string) (*pinpolicy.Table, error) {
	cfg, err := certpin.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	table, err := cfg.Table(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return table, nil
}
