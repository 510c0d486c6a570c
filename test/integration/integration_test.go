// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

//go:build integration

package integration

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-certpin/pkg/certpin"
	"github.com/jeremyhahn/go-certpin/pkg/dnspin"
	"github.com/jeremyhahn/go-certpin/pkg/pinreport"
	"github.com/jeremyhahn/go-certpin/pkg/pinverify"
	"github.com/jeremyhahn/go-certpin/pkg/spki"
)

const (
	pinnedHostname   = "pinned.example.com"
	wildcardHostname = "api.corp.example.com"
)

// Global state populated by TestMain.
var (
	rootCA   *identity // trust anchor for every pinned handshake
	serverID *identity // deployed leaf for both pinned hostnames
	rogueCA  *identity // issuer outside the trust anchor set
	rogueID  *identity // leaf presenting the same names, signed by rogueCA

	serverPin string // SPKI SHA-256 pin of the deployed leaf
	roguePin  string // SPKI SHA-256 pin of the rogue leaf
	backupPin string // SPKI SHA-256 pin of an undeployed backup key
)

// identity is a certificate plus its private key.
type identity struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// TestMain builds the shared test PKI:
// 1. A root CA and a server leaf covering both pinned hostnames
// 2. A rogue CA and a rogue leaf presenting the same hostnames
// 3. Pin material for the leaf, the rogue, and an undeployed backup key
func TestMain(m *testing.M) {
	var err error

	rootCA, err = newCA("CertPin Test Root CA")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating root CA: %v\n", err)
		os.Exit(1)
	}

	serverID, err = issueLeaf(rootCA, pinnedHostname, wildcardHostname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: issuing server leaf: %v\n", err)
		os.Exit(1)
	}

	rogueCA, err = newCA("CertPin Rogue CA")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating rogue CA: %v\n", err)
		os.Exit(1)
	}

	rogueID, err = issueLeaf(rogueCA, pinnedHostname, wildcardHostname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: issuing rogue leaf: %v\n", err)
		os.Exit(1)
	}

	serverDigest, err := spki.ComputeDigest(serverID.cert, spki.SHA256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: computing server pin: %v\n", err)
		os.Exit(1)
	}
	serverPin = serverDigest.String()

	rogueDigest, err := spki.ComputeDigest(rogueID.cert, spki.SHA256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: computing rogue pin: %v\n", err)
		os.Exit(1)
	}
	roguePin = rogueDigest.String()

	backupPin, err = undeployedBackupPin()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: computing backup pin: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// ---------------------------------------------------------------------------
// Pinned handshake: a matching pin admits the connection
// ---------------------------------------------------------------------------

func TestHandshakeMatchingPin(t *testing.T) {
	addr := startPinnedServer(t, serverID)

	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    pins:
      - %s
      - %s
`, pinnedHostname, serverPin, backupPin))

	pinner := newPinner(t, cfgPath, nil)

	if err := pinnedHandshake(t, pinner, pinnedHostname, addr); err != nil {
		t.Fatalf("handshake with matching pin failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// HTTP client: a full round trip through a pinned TLS configuration
// ---------------------------------------------------------------------------

func TestHTTPClientRoundTrip(t *testing.T) {
	addr := startPinnedServer(t, serverID)

	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    pins:
      - %s
      - %s
`, pinnedHostname, serverPin, backupPin))

	pinner := newPinner(t, cfgPath, nil)

	// The request names the pinned hostname; the dialer routes it to the
	// local listener the way a hosts-file override would.
	base := &tls.Config{RootCAs: trustPool(rootCA)}
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			raw, err := (&net.Dialer{}).DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			conn := tls.Client(raw, pinner.TLSConfigForHost(pinnedHostname, base))
			if err := conn.HandshakeContext(ctx); err != nil {
				raw.Close()
				return nil, err
			}
			return conn, nil
		},
	}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}

	resp, err := client.Get("https://" + pinnedHostname + "/healthz")
	if err != nil {
		t.Fatalf("pinned GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "ok\n" {
		t.Fatalf("body: got %q, want %q", body, "ok\n")
	}
}

// ---------------------------------------------------------------------------
// Pin mismatch: the connection is blocked and a violation report delivered
// ---------------------------------------------------------------------------

func TestWrongPinBlocksAndReports(t *testing.T) {
	addr := startPinnedServer(t, serverID)
	collector := startCollector(t)

	// Neither configured pin matches the deployed leaf.
	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    report_uris:
      - %s
    pins:
      - %s
      - %s
`, pinnedHostname, collector.url(), roguePin, backupPin))

	pinner := newPinner(t, cfgPath, pinreport.NewHTTPReporter(nil))

	err := pinnedHandshake(t, pinner, pinnedHostname, addr)
	if err == nil {
		t.Fatal("handshake with wrong pins should have failed")
	}
	if !errors.Is(err, certpin.ErrPinValidationFailed) {
		t.Fatalf("expected pin validation failure, got: %v", err)
	}

	// Close waits for the asynchronous report dispatch.
	if err := pinner.Close(); err != nil {
		t.Fatalf("closing pinner: %v", err)
	}

	reports := collector.reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 violation report, got %d", len(reports))
	}
	report := reports[0]

	if report.Hostname != pinnedHostname {
		t.Errorf("report hostname: got %q, want %q", report.Hostname, pinnedHostname)
	}
	if report.Port != 443 {
		t.Errorf("report port: got %d, want 443", report.Port)
	}
	if report.NotedHostname != pinnedHostname {
		t.Errorf("report noted-hostname: got %q, want %q", report.NotedHostname, pinnedHostname)
	}
	if report.ValidationResult != "failed" {
		t.Errorf("report validation-result: got %q, want %q", report.ValidationResult, "failed")
	}
	if !report.Enforced {
		t.Error("report should be marked enforced")
	}
	if report.DateTime.IsZero() {
		t.Error("report date-time should be set")
	}

	// The served chain must carry the certificate the server presented.
	if len(report.ServedCertificateChain) != 1 {
		t.Fatalf("served chain length: got %d, want 1", len(report.ServedCertificateChain))
	}
	block, _ := pem.Decode([]byte(report.ServedCertificateChain[0]))
	if block == nil {
		t.Fatal("served chain entry is not PEM")
	}
	served, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parsing served chain entry: %v", err)
	}
	if !bytes.Equal(served.Raw, serverID.cert.Raw) {
		t.Error("served chain entry does not match the deployed leaf")
	}

	// Known pins are rendered as RFC 7469 pin directives.
	if len(report.KnownPins) != 2 {
		t.Fatalf("known pins: got %d, want 2", len(report.KnownPins))
	}
	for _, pin := range report.KnownPins {
		if !strings.HasPrefix(pin, `pin-sha256="`) {
			t.Errorf("known pin %q is not a pin-sha256 directive", pin)
		}
	}

	if ct := collector.lastContentType(); ct != "application/json" {
		t.Errorf("report content type: got %q, want application/json", ct)
	}
}

// ---------------------------------------------------------------------------
// Report-only: a pin mismatch is reported but the connection proceeds
// ---------------------------------------------------------------------------

func TestReportOnlyAllowsAndReports(t *testing.T) {
	addr := startPinnedServer(t, serverID)
	collector := startCollector(t)

	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    report_only: true
    report_uris:
      - %s
    pins:
      - %s
`, pinnedHostname, collector.url(), roguePin))

	pinner := newPinner(t, cfgPath, pinreport.NewHTTPReporter(nil))

	if err := pinnedHandshake(t, pinner, pinnedHostname, addr); err != nil {
		t.Fatalf("report-only handshake should succeed, got: %v", err)
	}

	if err := pinner.Close(); err != nil {
		t.Fatalf("closing pinner: %v", err)
	}

	reports := collector.reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 violation report, got %d", len(reports))
	}
	if reports[0].Enforced {
		t.Error("report-only violation should not be marked enforced")
	}
	if reports[0].ValidationResult != "failed" {
		t.Errorf("report validation-result: got %q, want %q", reports[0].ValidationResult, "failed")
	}
}

// ---------------------------------------------------------------------------
// Untrusted chain: pinning never overrides a platform rejection
// ---------------------------------------------------------------------------

func TestUntrustedChainRejected(t *testing.T) {
	addr := startPinnedServer(t, rogueID)
	collector := startCollector(t)

	// The rogue pin is in the configured set, so only chain trust can fail.
	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    report_uris:
      - %s
    pins:
      - %s
      - %s
`, pinnedHostname, collector.url(), roguePin, backupPin))

	pinner := newPinner(t, cfgPath, pinreport.NewHTTPReporter(nil))

	// The handshake rejects the rogue chain during standard verification,
	// before the pin walk runs. That failure is an x509 error, not a pin
	// error.
	err := pinnedHandshake(t, pinner, pinnedHostname, addr)
	if err == nil {
		t.Fatal("handshake with untrusted chain should have failed")
	}
	if errors.Is(err, certpin.ErrPinValidationFailed) {
		t.Fatalf("expected platform rejection, got pin error: %v", err)
	}

	// The verifier re-validates chains itself and refuses to consult pins
	// for one the trust engine rejects, even when the pin would match.
	eval := pinner.Evaluate(pinnedHostname, []*x509.Certificate{rogueID.cert})
	if eval.Decision != certpin.DecisionBlock {
		t.Fatalf("decision: got %s, want %s", eval.Decision, certpin.DecisionBlock)
	}
	if eval.Result != pinverify.ResultFailedChainNotTrusted {
		t.Fatalf("result: got %s, want %s", eval.Result, pinverify.ResultFailedChainNotTrusted)
	}

	if err := pinner.Close(); err != nil {
		t.Fatalf("closing pinner: %v", err)
	}

	reports := collector.reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 violation report, got %d", len(reports))
	}
	if reports[0].ValidationResult != "failed-chain-not-trusted" {
		t.Errorf("report validation-result: got %q, want %q",
			reports[0].ValidationResult, "failed-chain-not-trusted")
	}
}

// ---------------------------------------------------------------------------
// Report dedup: repeated identical violations deliver one report
// ---------------------------------------------------------------------------

func TestDuplicateReportsSuppressed(t *testing.T) {
	addr := startPinnedServer(t, serverID)
	collector := startCollector(t)

	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  %s:
    report_uris:
      - %s
    pins:
      - %s
      - %s
`, pinnedHostname, collector.url(), roguePin, backupPin))

	pinner := newPinner(t, cfgPath, pinreport.NewHTTPReporter(nil))

	// First violation delivers. Close waits for the dispatch so the second
	// violation sees the delivery recorded.
	if err := pinnedHandshake(t, pinner, pinnedHostname, addr); err == nil {
		t.Fatal("first handshake should have failed")
	}
	if err := pinner.Close(); err != nil {
		t.Fatalf("closing pinner: %v", err)
	}
	if got := len(collector.reports()); got != 1 {
		t.Fatalf("after first violation: got %d reports, want 1", got)
	}

	// Second identical violation is suppressed by the duplicate window.
	if err := pinnedHandshake(t, pinner, pinnedHostname, addr); err == nil {
		t.Fatal("second handshake should have failed")
	}
	if err := pinner.Close(); err != nil {
		t.Fatalf("closing pinner: %v", err)
	}
	if got := len(collector.reports()); got != 1 {
		t.Fatalf("after second violation: got %d reports, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// Wildcard policy: a subdomain inherits its parent's pins
// ---------------------------------------------------------------------------

func TestWildcardPolicyHandshake(t *testing.T) {
	addr := startPinnedServer(t, serverID)

	cfgPath := writePinConfig(t, fmt.Sprintf(`
pinned_domains:
  "*.corp.example.com":
    pins:
      - %s
      - %s
`, serverPin, backupPin))

	pinner := newPinner(t, cfgPath, nil)

	if err := pinnedHandshake(t, pinner, wildcardHostname, addr); err != nil {
		t.Fatalf("wildcard handshake failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// DNS: publish pins as TLSA records, rediscover them, enforce the result
// ---------------------------------------------------------------------------

func TestPublishDiscoverEnforce(t *testing.T) {
	const port = 8443

	// Publish: render the deployed pin set as zone file lines.
	published, err := spki.ParsePinSet([]string{serverPin, backupPin})
	if err != nil {
		t.Fatalf("parsing pin set: %v", err)
	}
	lines, err := dnspin.ZoneLines(pinnedHostname, port, published)
	if err != nil {
		t.Fatalf("rendering zone lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("zone lines: got %d, want 2", len(lines))
	}

	records := make([]dns.RR, 0, len(lines))
	for _, line := range lines {
		rr, err := dns.NewRR(line)
		if err != nil {
			t.Fatalf("parsing zone line %q: %v", line, err)
		}
		records = append(records, rr)
	}
	dnsAddr := startAuthoritativeDNS(t, records)

	// Discover: resolve the published records back into a pin set.
	resolver, err := dnspin.NewResolver(&dnspin.ResolverConfig{Server: dnsAddr})
	if err != nil {
		t.Fatalf("creating resolver: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	discovered, err := resolver.LookupPins(ctx, pinnedHostname, port)
	if err != nil {
		t.Fatalf("discovering pins: %v", err)
	}

	got := discovered.Pins.Pins()
	want := published.Pins()
	if len(got) != len(want) {
		t.Fatalf("discovered pins: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("discovered pin %d: got %q, want %q", i, got[i], want[i])
		}
	}

	// Enforce: write the discovered pins as configuration and pin a live
	// handshake with them.
	cfg := &certpin.Config{
		PinnedDomains: map[string]certpin.PolicyConfig{
			discovered.Hostname: {Pins: discovered.Pins.Pins()},
		},
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshaling config: %v", err)
	}
	cfgPath := writePinConfig(t, string(data))

	pinner := newPinner(t, cfgPath, nil)
	addr := startPinnedServer(t, serverID)

	if err := pinnedHandshake(t, pinner, pinnedHostname, addr); err != nil {
		t.Fatalf("handshake with discovered pins failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newCA generates a self-signed ECDSA P-256 certificate authority.
func newCA(cn string) (*identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &identity{cert: cert, key: key}, nil
}

// issueLeaf issues a server certificate for the given hostnames.
func issueLeaf(ca *identity, hostnames ...string) (*identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject:      pkix.Name{CommonName: hostnames[0]},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     hostnames,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &identity{cert: cert, key: key}, nil
}

// undeployedBackupPin computes the pin of a fresh key that never appears in
// any served chain, satisfying the backup pin rule without ever matching.
func undeployedBackupPin() (string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", err
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", err
	}
	digest, err := spki.Sum(der, spki.SHA256)
	if err != nil {
		return "", err
	}
	return digest.String(), nil
}

// trustPool returns a cert pool holding the identity as its single anchor.
func trustPool(ca *identity) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(ca.cert)
	return pool
}

// startPinnedServer starts an HTTPS server presenting the identity's
// certificate and returns its listen address.
func startPinnedServer(t *testing.T, id *identity) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{id.cert.Raw},
			PrivateKey:  id.key,
		}},
		MinVersion: tls.VersionTLS12,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	server := &http.Server{Handler: mux}
	go server.Serve(tls.NewListener(ln, tlsCfg)) //nolint:errcheck

	t.Cleanup(func() {
		server.Close()
	})

	return ln.Addr().String()
}

// startAuthoritativeDNS starts a UDP DNS server answering TLSA queries from
// the given records with the Authenticated Data flag set. Returns its address.
func startAuthoritativeDNS(t *testing.T, records []dns.RR) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening for DNS: %v", err)
	}

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		resp.Authoritative = true
		resp.AuthenticatedData = true
		if len(req.Question) == 1 && req.Question[0].Qtype == dns.TypeTLSA {
			for _, rr := range records {
				if strings.EqualFold(rr.Header().Name, req.Question[0].Name) {
					resp.Answer = append(resp.Answer, rr)
				}
			}
		}
		_ = w.WriteMsg(resp)
	})

	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go srv.ActivateAndServe() //nolint:errcheck

	t.Cleanup(func() {
		_ = srv.Shutdown()
	})

	return pc.LocalAddr().String()
}

// writePinConfig writes a pinning configuration file and returns its path.
func writePinConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pins.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// newPinner loads a pinning configuration file and builds a pinner whose
// verifier trusts the test root CA.
func newPinner(t *testing.T, cfgPath string, reporter certpin.Reporter) *certpin.Pinner {
	t.Helper()

	cfg, err := certpin.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	table, err := cfg.Table(nil)
	if err != nil {
		t.Fatalf("building policy table: %v", err)
	}

	verifier := pinverify.NewVerifier(&pinverify.VerifierConfig{
		Validator: pinverify.NewPlatformValidator(&pinverify.PlatformValidatorConfig{
			Roots: trustPool(rootCA),
		}),
	})

	pinner, err := certpin.NewPinner(&certpin.PinnerConfig{
		Table:    table,
		Verifier: verifier,
		Reporter: reporter,
	})
	if err != nil {
		t.Fatalf("creating pinner: %v", err)
	}
	t.Cleanup(func() {
		_ = pinner.Close()
	})
	return pinner
}

// pinnedHandshake dials addr and completes a TLS handshake pinned for
// hostname, trusting the test root CA. Returns the handshake error.
func pinnedHandshake(t *testing.T, pinner *certpin.Pinner, hostname, addr string) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}

	base := &tls.Config{RootCAs: trustPool(rootCA)}
	conn := tls.Client(raw, pinner.TLSConfigForHost(hostname, base))
	err = conn.HandshakeContext(ctx)
	conn.Close()
	return err
}

// reportCollector records violation reports POSTed by an HTTPReporter.
type reportCollector struct {
	srv *httptest.Server

	mu          sync.Mutex
	received    []pinreport.Report
	contentType string
}

// startCollector starts an HTTP collector that decodes each report body.
func startCollector(t *testing.T) *reportCollector {
	t.Helper()

	c := &reportCollector{}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var report pinreport.Report
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.received = append(c.received, report)
		c.contentType = r.Header.Get("Content-Type")
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *reportCollector) url() string {
	return c.srv.URL
}

func (c *reportCollector) reports() []pinreport.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]pinreport.Report(nil), c.received...)
}

func (c *reportCollector) lastContentType() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contentType
}
