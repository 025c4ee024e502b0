// Package report delivers finalized session intelligence: archived
// locally in sqlite and, when configured, pushed to an external
// collection endpoint. Delivery is one-way; the session outcome never
// depends on it.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/intel"
)

// Sink accepts a finalized report.
type Sink interface {
	Deliver(ctx context.Context, r *intel.Report) error
}

// HTTPSink POSTs reports as JSON to the configured callback URL.
type HTTPSink struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewHTTPSink returns nil when no callback URL is configured.
func NewHTTPSink(cfg config.ReportConfig, log *zap.Logger) *HTTPSink {
	if cfg.CallbackURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		url:    cfg.CallbackURL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Deliver pushes the report. A non-2xx status is an error; the caller
// decides whether to log or retry.
func (s *HTTPSink) Deliver(ctx context.Context, r *intel.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report endpoint returned status %d", resp.StatusCode)
	}

	s.log.Info("report delivered",
		zap.String("session_id", r.SessionID),
		zap.String("scam_type", r.ScamType))
	return nil
}

// Dispatcher archives every report and pushes it when a sink exists.
// Failures are logged and never retried; the archive keeps the record.
type Dispatcher struct {
	archive *Archive
	sink    Sink
	log     *zap.Logger
}

// NewDispatcher wires the archive with an optional push sink.
func NewDispatcher(archive *Archive, sink Sink, log *zap.Logger) *Dispatcher {
	return &Dispatcher{archive: archive, sink: sink, log: log}
}

// Dispatch stores and pushes the report. Intended to run on its own
// goroutine; it never returns an error to the session path.
func (d *Dispatcher) Dispatch(ctx context.Context, r *intel.Report) {
	delivered := false
	if d.sink != nil {
		if err := d.sink.Deliver(ctx, r); err != nil {
			d.log.Warn("report delivery failed",
				zap.String("session_id", r.SessionID), zap.Error(err))
		} else {
			delivered = true
		}
	}

	if d.archive != nil {
		if err := d.archive.Save(ctx, r, delivered); err != nil {
			d.log.Error("report archive failed",
				zap.String("session_id", r.SessionID), zap.Error(err))
		}
	}
}
