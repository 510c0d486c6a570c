// Copyright 2026 Jeremy Hahn
// SPDX-License-Identifier: MIT

package pinreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultReportTimeout bounds a single report POST.
	DefaultReportTimeout = 10 * time.Second

	// DefaultDedupWindow is how long an identical report to the same URI
	// is suppressed after a successful delivery.
	DefaultDedupWindow = 24 * time.Hour

	// dedupCleanupInterval is how often expired suppression entries are purged.
	dedupCleanupInterval = time.Hour

	// maxReportResponse caps how much of a collector response is drained.
	maxReportResponse = 4096
)

// HTTPReporterConfig configures an HTTPReporter.
type HTTPReporterConfig struct {
	// Timeout bounds each report POST. Defaults to DefaultReportTimeout.
	Timeout time.Duration

	// DedupWindow is how long identical reports to the same URI stay
	// suppressed. Defaults to DefaultDedupWindow.
	DedupWindow time.Duration

	// Client is the HTTP client used for delivery. Defaults to a client
	// with Timeout applied.
	Client *http.Client

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPReporter delivers reports by POSTing JSON to each report URI. It
// suppresses duplicates per (URI, report fingerprint) so a flapping host
// cannot flood a collector. Safe for concurrent use.
type HTTPReporter struct {
	client *http.Client
	seen   *gocache.Cache
	logger *slog.Logger
}

// NewHTTPReporter creates an HTTPReporter. A nil config uses defaults
// throughout.
func NewHTTPReporter(cfg *HTTPReporterConfig) *HTTPReporter {
	if cfg == nil {
		cfg = &HTTPReporterConfig{}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultReportTimeout
	}
	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &HTTPReporter{
		client: cfg.Client,
		seen:   gocache.New(cfg.DedupWindow, dedupCleanupInterval),
		logger: cfg.Logger.With("component", "pin_reporter"),
	}
}

// Report POSTs the report to every URI not suppressed by the duplicate
// window. It returns nil when at least one URI accepted the report or every
// URI was suppressed, and ErrReportFailed when all attempted deliveries
// failed. A failed delivery is not recorded as seen, so the next violation
// retries it.
func (r *HTTPReporter) Report(ctx context.Context, uris []string, report *Report) error {
	if report == nil {
		return ErrNoReport
	}
	if len(uris) == 0 {
		return ErrNoReportURIs
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportFailed, err)
	}
	fingerprint := report.Fingerprint()

	attempted, delivered := 0, 0
	for _, uri := range uris {
		key := uri + "/" + fingerprint
		if _, dup := r.seen.Get(key); dup {
			r.logger.Debug("report suppressed as duplicate", "uri", uri, "hostname", report.Hostname)
			continue
		}
		attempted++
		if err := r.post(ctx, uri, body); err != nil {
			r.logger.Warn("report delivery failed", "uri", uri, "hostname", report.Hostname, "error", err)
			continue
		}
		r.seen.Set(key, struct{}{}, gocache.DefaultExpiration)
		r.logger.Info("report delivered", "uri", uri, "hostname", report.Hostname, "result", report.ValidationResult)
		delivered++
	}

	if attempted > 0 && delivered == 0 {
		return fmt.Errorf("%w: all %d URIs failed", ErrReportFailed, attempted)
	}
	return nil
}

func (r *HTTPReporter) post(ctx context.Context, uri string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReportResponse))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the reporter.
func (r *HTTPReporter) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
