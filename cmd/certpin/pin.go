// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

const (
	// defaultConnectTimeout is the default timeout for live-handshake
	// chain capture.
	defaultConnectTimeout = 10 * time.Second
)

// pinCmd computes SPKI pins from a certificate file or a live server.
var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Compute SPKI pins from a certificate file or live server",
	Long: `Compute SPKI (Subject Public Key Info) digest pins for every certificate
in a PEM file or in the chain a live server presents.

Pins are printed in RFC 7469 form ("sha256/<base64>") alongside the hex
digest. Pin the leaf plus at least one backup key before enforcing.`,
	RunE: runPin,
}

func init() {
	pinCmd.Flags().String("cert-file", "", "path to PEM certificate file or chain")
	pinCmd.Flags().String("connect", "", "host:port to capture the served chain from")
	pinCmd.Flags().StringSlice("algorithm", []string{"sha256"}, "digest algorithm (repeatable: sha256|sha384|sha512)")
}

func runPin(cmd *cobra.Command, args []string) error {
	certFile, _ := cmd.Flags().GetString("cert-file")
	connect, _ := cmd.Flags().GetString("connect")
	algNames, _ := cmd.Flags().GetStringSlice("algorithm")

	if (certFile == "") == (connect == "") {
		return fmt.Errorf("%w: exactly one of --cert-file or --connect is required", ErrInvalidInput)
	}

	algorithms := make([]spki.Algorithm, 0, len(algNames))
	for _, name := range algNames {
		alg, err := spki.ParseAlgorithm(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		algorithms = append(algorithms, alg)
	}

	var (
		chain []*x509.Certificate
		err   error
	)
	if certFile != "" {
		slog.Debug("computing pins from file", "cert_file", certFile)
		chain, err = loadCertChainFromPEMFile(certFile)
	} else {
		sigCtx, sigStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer sigStop()

		ctx, cancel := context.WithTimeout(sigCtx, defaultConnectTimeout)
		defer cancel()

		slog.Debug("capturing served chain", "addr", connect)
		chain, err = fetchServedChain(ctx, connect)
	}
	if err != nil {
		return err
	}

	for i, cert := range chain {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Certificate %d:\n", i+1)
		fmt.Printf("  Subject: %s\n", cert.Subject.String())
		fmt.Printf("  Issuer:  %s\n", cert.Issuer.String())
		for _, alg := range algorithms {
			d, digestErr := spki.ComputeDigest(cert, alg)
			if digestErr != nil {
				return fmt.Errorf("%w: %w", ErrInvalidInput, digestErr)
			}
			fmt.Printf("  %s pin: %s\n", alg, d)
			fmt.Printf("  %s hex: %s\n", alg, d.Hex())
		}
	}
	return nil
}

// fetchServedChain captures the certificate chain a server presents during a
// TLS handshake. Certificate verification is intentionally skipped: the
// chain is inspected, never trusted.
func fetchServedChain(ctx context.Context, addr string) ([]*x509.Certificate, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: --connect must be host:port: %w", ErrInvalidInput, err)
	}

	dialer := &tls.Dialer{
		Config: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ServerName:         host,
			InsecureSkipVerify: true, //nolint:gosec // inspection only, never trusted
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%w: server presented no certificates", ErrConnectFailed)
	}
	return state.PeerCertificates, nil
}

// loadCertChainFromPEMFile reads every CERTIFICATE block from a PEM file,
// leaf first if the file follows chain order.
func loadCertChainFromPEMFile(certFile string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFileOperation, certFile, err)
	}

	var chain []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, parseErr := x509.ParseCertificate(block.Bytes)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: parsing certificate: %w", ErrInvalidInput, parseErr)
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no PEM certificates found in %s", ErrInvalidInput, certFile)
	}
	return chain, nil
}
