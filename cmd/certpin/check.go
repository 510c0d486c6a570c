// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-certpin/pkg/certpin"
	"github.com/jeremyhahn/go-certpin/pkg/pinverify"
)

// checkCmd evaluates a live server chain against the pinning policy.
var checkCmd = &cobra.Command{
	Use:   "check <hostname>",
	Short: "Connect to a server and evaluate its chain against policy",
	Long: `Connect to a TLS server, capture the certificate chain it presents, and
evaluate the chain against the pinning policy for the hostname.

The hostname selects the policy and the expected certificate identity.
--connect overrides the dial target, useful when the host is fronted by
a local proxy or resolves elsewhere; it defaults to <hostname>:<port>.

Exit codes: 0 when the connection would be allowed (pin match or not
pinned), 1 when pin validation blocks it, 2 on configuration errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("config", "", "path to pinning configuration file (required)")
	checkCmd.Flags().String("connect", "", "host:port to dial (default: <hostname>:<port>)")
	checkCmd.Flags().Int("port", int(certpin.DefaultPort), "TLS port when --connect is not given")
	checkCmd.Flags().String("ca-file", "", "PEM file with trust roots (default: system roots)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	connect, _ := cmd.Flags().GetString("connect")
	port, _ := cmd.Flags().GetInt("port")
	caFile, _ := cmd.Flags().GetString("ca-file")

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

	var roots *x509.CertPool
	if caFile != "" {
		roots, err = loadCertPoolFromPEMFile(caFile)
		if err != nil {
			return err
		}
	}

	pinner, err := certpin.NewPinner(&certpin.PinnerConfig{
		Table: table,
		Verifier: pinverify.NewVerifier(&pinverify.VerifierConfig{
			Validator: pinverify.NewPlatformValidator(&pinverify.PlatformValidatorConfig{Roots: roots}),
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	defer pinner.Close()

	if connect == "" {
		connect = net.JoinHostPort(hostname, strconv.Itoa(port))
	}

	sigCtx, sigStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer sigStop()

	ctx, cancel := context.WithTimeout(sigCtx, defaultConnectTimeout)
	defer cancel()

	slog.Debug("capturing served chain", "addr", connect, "hostname", hostname)

	chain, err := fetchServedChain(ctx, connect)
	if err != nil {
		return err
	}

	slog.Info("captured served chain", "addr", connect, "certs", len(chain))

	eval := pinner.Evaluate(hostname, chain)

	fmt.Printf("Hostname: %s\n", eval.Hostname)
	if eval.Key.IsZero() {
		fmt.Println("Key:      (none)")
	} else {
		fmt.Printf("Key:      %s\n", eval.Key)
	}
	if eval.Decision != certpin.DecisionNotPinned {
		fmt.Printf("Result:   %s\n", eval.Result)
	}
	fmt.Printf("Decision: %s\n", eval.Decision)

	if eval.Decision == certpin.DecisionBlock {
		return fmt.Errorf("%w: %s for %s", ErrPinFailure, eval.Result, eval.Hostname)
	}
	return nil
}

// loadCertPoolFromPEMFile builds a certificate pool from a PEM bundle.
func loadCertPoolFromPEMFile(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFileOperation, path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%w: no PEM certificates found in %s", ErrInvalidInput, path)
	}
	return pool, nil
}
