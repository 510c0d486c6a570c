// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-certpin/pkg/certpin"
	"github.com/jeremyhahn/go-certpin/pkg/dnspin"
)

const (
	// defaultDNSTimeout is the default timeout for TLSA discovery lookups.
	defaultDNSTimeout = 10 * time.Second
)

// dnsCmd is the parent command for DNS pin discovery and publication.
var dnsCmd = &cobra.Command{
	Use:   "dns",
	Short: "DNS TLSA pin discovery and publication",
	Long: `Tools for working with SPKI pins published in DNS as DANE TLSA records
(RFC 6698, selector=SPKI).

Subcommands:
  discover - Look up published pins and print a policy snippet
  zone     - Emit TLSA zone lines for a configured domain`,
}

// dnsDiscoverCmd looks up published pins and prints a policy snippet.
var dnsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover published SPKI pins for a hostname",
	Long: `Query DNS for _<port>._tcp.<hostname> TLSA records with selector=SPKI and
print the discovered pins as a ready-to-paste YAML policy snippet.

Lookups require DNSSEC-authenticated answers (the AD flag) unless
--skip-dnssec is given: pins learned over unauthenticated DNS are
attacker-suppliable. A single discovered pin is not enough for an
enforcing policy; add a backup pin before enabling enforcement.`,
	RunE: runDNSDiscover,
}

// dnsZoneCmd emits TLSA zone lines from configured pins.
var dnsZoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Emit TLSA zone lines for a configured domain",
	Long: `Generate DANE TLSA zone lines (usage=DANE-EE, selector=SPKI) from the
pinning policy that governs a hostname, suitable for publishing in the
domain's DNS zone.`,
	RunE: runDNSZone,
}

func init() {
	dnsCmd.AddCommand(dnsDiscoverCmd)
	dnsCmd.AddCommand(dnsZoneCmd)

	// Flags for dns discover.
	dnsDiscoverCmd.Flags().String("hostname", "", "hostname to discover pins for (required)")
	dnsDiscoverCmd.Flags().Int("port", int(certpin.DefaultPort), "TLS port for the TLSA owner name")
	dnsDiscoverCmd.Flags().String("dns-server", "", "DNS server address (e.g., 8.8.8.8:53)")
	dnsDiscoverCmd.Flags().Bool("dns-over-tls", false, "use DNS-over-TLS (DoT) for TLSA lookups")
	dnsDiscoverCmd.Flags().String("dns-tls-server-name", "", "TLS server name for DNS-over-TLS")
	dnsDiscoverCmd.Flags().Bool("skip-dnssec", false, "accept answers without the DNSSEC AD flag")

	// Flags for dns zone.
	dnsZoneCmd.Flags().String("config", "", "path to pinning configuration file (required)")
	dnsZoneCmd.Flags().String("hostname", "", "hostname to publish records for (required)")
	dnsZoneCmd.Flags().Int("port", int(certpin.DefaultPort), "TLS port for the TLSA owner name")
}

func runDNSDiscover(cmd *cobra.Command, args []string) error {
	hostname, _ := cmd.Flags().GetString("hostname")
	port, _ := cmd.Flags().GetInt("port")
	dnsServer, _ := cmd.Flags().GetString("dns-server")
	dnsOverTLS, _ := cmd.Flags().GetBool("dns-over-tls")
	dnsTLSServerName, _ := cmd.Flags().GetString("dns-tls-server-name")
	skipDNSSEC, _ := cmd.Flags().GetBool("skip-dnssec")

	if hostname == "" {
		return fmt.Errorf("%w: --hostname is required", ErrInvalidInput)
	}

	resolver, err := dnspin.NewResolver(&dnspin.ResolverConfig{
		Server:        dnsServer,
		UseTLS:        dnsOverTLS,
		TLSServerName: dnsTLSServerName,
		SkipDNSSEC:    skipDNSSEC,
	})
	if err != nil {
		return fmt.Errorf("%w: resolver: %w", ErrLookupFailed, err)
	}

	sigCtx, sigStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer sigStop()

	ctx, cancel := context.WithTimeout(sigCtx, defaultDNSTimeout)
	defer cancel()

	slog.Debug("discovering pins", "hostname", hostname, "port", port, "dns_server", dnsServer)

	discovered, err := resolver.LookupPins(ctx, hostname, uint16(port))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	slog.Info("discovered pins", "hostname", hostname, "port", port, "pins", discovered.Pins.Len())

	names := make([]string, len(discovered.Algorithms))
	for i, alg := range discovered.Algorithms {
		names[i] = alg.String()
	}

	snippet := certpin.Config{
		PinnedDomains: map[string]certpin.PolicyConfig{
			discovered.Hostname: {
				Algorithms: names,
				Pins:       discovered.Pins.Pins(),
			},
		},
	}
	out, err := yaml.Marshal(&snippet)
	if err != nil {
		return fmt.Errorf("%w: encoding snippet: %w", ErrLookupFailed, err)
	}
	return writeOutput(out)
}

func runDNSZone(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	hostname, _ := cmd.Flags().GetString("hostname")
	port, _ := cmd.Flags().GetInt("port")

	if configFile == "" {
		return fmt.Errorf("%w: --config is required", ErrInvalidInput)
	}
	if hostname == "" {
		return fmt.Errorf("%w: --hostname is required", ErrInvalidInput)
	}

	table, err := loadPolicyTable(configFile)
	if err != nil {
		return err
	}

	key, ok := table.Resolve(hostname)
	if !ok {
		return fmt.Errorf("%w: %q is not pinned in %s", ErrInvalidInput, hostname, configFile)
	}
	policy, ok := table.Policy(key)
	if !ok || policy.Pins.Len() == 0 {
		return fmt.Errorf("%w: no pins configured for %q", ErrInvalidInput, hostname)
	}

	slog.Debug("generating zone lines", "hostname", hostname, "port", port, "key", key.String(), "pins", policy.Pins.Len())

	lines, err := dnspin.ZoneLines(hostname, uint16(port), policy.Pins)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
