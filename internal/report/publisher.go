package report

import (
	"log/slog"

	"suitectl/internal/artifacts"
	"suitectl/internal/domain"
)

// Publisher renders the chart and merges recordings into the report of a finished run.
type Publisher struct {
	videosDir  string
	correlator *artifacts.Correlator
	merger     *Merger
	logger     *slog.Logger
}

// NewPublisher creates a Publisher for the recordings below rc.Videos
func NewPublisher(rc domain.RunContext, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		videosDir:  rc.Videos,
		correlator: artifacts.NewCorrelator(rc.Root, logger),
		merger:     NewMerger(rc.Root, logger),
		logger:     logger,
	}
}

// Publish never fails: chart and merge problems are logged.
func (p *Publisher) Publish(r domain.RunReport) {
	if r.ChartPath != "" {
		if err := WritePieChart(r.Stats, r.ChartPath, r.Title); err != nil {
			p.logger.Warn("cannot write chart", "path", r.ChartPath, "error", err)
		}
	}

	recordings := p.correlator.Correlate(p.videosDir)
	if recordings.Len() == 0 {
		p.logger.Debug("no recordings to merge", "dir", p.videosDir)
		return
	}

	injected, err := p.merger.MergeFile(r.ReportPath, recordings, r.Failed)
	if err != nil {
		p.logger.Warn("cannot merge recordings into report", "report", r.ReportPath, "error", err)
		return
	}
	p.logger.Info("merged recordings into report", "report", r.ReportPath, "tests", injected)
}
