package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"suitectl/internal/domain"
)

const (
	MetricsNamespace = "suitectl"
	// TextfileName is the node_exporter textfile written next to the reports
	TextfileName = "suitectl.prom"
)

// Exporter records the outcome of a run and writes it in the Prometheus text format.
type Exporter struct {
	path     string
	registry *prometheus.Registry
	logger   *slog.Logger

	tests    *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	attempts *prometheus.GaugeVec
	exitCode *prometheus.GaugeVec
	success  *prometheus.GaugeVec
}

// NewExporter creates an Exporter writing to path
func NewExporter(path string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		path:     path,
		registry: prometheus.NewRegistry(),
		logger:   logger,
		tests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "tests",
			Help:      "Number of test cases in the initial attempt by result",
		}, []string{"run_id", "result"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall clock of the initial engine invocation",
		}, []string{"run_id"}),
		attempts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "retry_attempts",
			Help:      "Number of retry attempts performed",
		}, []string{"run_id"}),
		exitCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "exit_code",
			Help:      "Exit status of the final engine invocation",
		}, []string{"run_id"}),
		success: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_success",
			Help:      "1 when the final engine invocation exited cleanly",
		}, []string{"run_id"}),
	}
	e.registry.MustRegister(e.tests, e.duration, e.attempts, e.exitCode, e.success)
	return e
}

// Record sets the gauges for report
func (e *Exporter) Record(r domain.RunReport) {
	e.tests.WithLabelValues(r.RunID, string(domain.StatusPassed)).Set(float64(r.Stats.Passed))
	e.tests.WithLabelValues(r.RunID, string(domain.StatusFailed)).Set(float64(r.Stats.Failed))
	e.tests.WithLabelValues(r.RunID, string(domain.StatusSkipped)).Set(float64(r.Stats.Skipped))
	e.duration.WithLabelValues(r.RunID).Set(r.Duration)
	e.attempts.WithLabelValues(r.RunID).Set(float64(r.Attempts))
	e.exitCode.WithLabelValues(r.RunID).Set(float64(r.ExitCode))

	success := 0.0
	if r.Succeeded() {
		success = 1
	}
	e.success.WithLabelValues(r.RunID).Set(success)
}

// Write writes the registry to the textfile
func (e *Exporter) Write() error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(e.path, e.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", e.path, err)
	}
	return nil
}

// Publish records and writes. Failures are logged.
func (e *Exporter) Publish(r domain.RunReport) {
	e.Record(r)
	if err := e.Write(); err != nil {
		e.logger.Warn("cannot write metrics", "error", err)
		return
	}
	e.logger.Debug("wrote metrics", "path", e.path)
}
