package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cloudfoundry-incubator/rendezvous/config"
	"github.com/cloudfoundry-incubator/rendezvous/converters"
	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
	"github.com/cloudfoundry-incubator/rendezvous/metrics"
	"github.com/cloudfoundry-incubator/rendezvous/viz"
)

// Analyzer runs one pass over one input stream
type Analyzer struct {
	Config   config.Config
	Logger   *zap.Logger
	Counters *metrics.Counters
	Stdout   io.Writer
	// Color turns on ANSI colours in stream output
	Color bool
}

// Run consumes in until end of input (or until ctx is done), printing live output as it goes,
// then prints the report and/or timeline.
//
// Only an unknown event phase, a failed write or a cancelled ctx stop a run.  A missing timeline request is logged and the run carries on.
func (a *Analyzer) Run(ctx context.Context, in io.Reader) error {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	counters := a.Counters
	if counters == nil {
		counters = metrics.New()
	}

	reader := converters.NewReader(in, a.Config.Format)
	correlator := NewCorrelator(logger, counters)

	var printer *Printer
	if a.Config.Stream || a.Config.Raw {
		printer = NewPrinter(a.Stdout, PrinterOptions{
			Stream:      a.Config.Stream,
			Raw:         a.Config.Raw,
			Color:       a.Color,
			MinDuration: a.Config.MinDuration,
			Identity:    a.Config.IdentityFilter,
		})
	}

	for {
		line, ok := reader.Next(ctx)
		if !ok {
			break
		}
		counters.RecordsRead.Inc()

		if line.Record == nil {
			a.skip(logger, counters, line, "undecodable")
			continue
		}
		event, ok := NewEvent(line.Record)
		if !ok {
			a.skip(logger, counters, line, "not-an-event")
			continue
		}

		span, completed, err := correlator.Observe(event)
		if err != nil {
			return fmt.Errorf("correlating events: %w", err)
		}

		if printer == nil {
			continue
		}
		switch {
		case event.Phase == Begin:
			err = printer.Begin(event)
		case completed:
			err = printer.End(span)
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if open := correlator.Open(); open > 0 {
		logger.Info("unmatched-begins", zap.Int("count", open))
		correlator.LogOpen()
	}
	defer counters.Log(logger)

	if a.Config.Report {
		if err := a.report(logger, correlator.Requests()); err != nil {
			return err
		}
	}

	if a.Config.Timeline != "" {
		if err := a.timeline(logger, correlator.Requests()); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) skip(logger *zap.Logger, counters *metrics.Counters, line converters.Line, reason string) {
	counters.RecordsSkipped.Inc()
	if a.Config.Debug {
		logger.Debug("skipped-record", zap.String("reason", reason), zap.ByteString("raw", line.Raw))
	}
}

func (a *Analyzer) report(logger *zap.Logger, requests *GroupedSpans) error {
	report := BuildReport(requests, ReportOptions{
		MinDuration:    a.Config.MinDuration,
		IdentityFilter: a.Config.IdentityFilter,
	})

	if _, err := report.WriteTo(a.Stdout); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if a.Config.PlotDir != "" {
		file := filepath.Join(a.Config.PlotDir, "report-histograms.svg")
		if err := viz.PlotReport(report, file); err != nil {
			logger.Error("failed-to-plot-report", zap.String("file", file), zap.Error(err))
		}
	}
	return nil
}

func (a *Analyzer) timeline(logger *zap.Logger, requests *GroupedSpans) error {
	timeline, err := TimelineFor(requests, a.Config.Timeline)
	if errors.Is(err, ErrNoSuchRequest) {
		logger.Error("no-timeline", zap.String("req_id", a.Config.Timeline), zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := timeline.WriteTo(a.Stdout); err != nil {
		return fmt.Errorf("writing timeline: %w", err)
	}

	if a.Config.PlotDir != "" {
		file := filepath.Join(a.Config.PlotDir, fmt.Sprintf("timeline-%s.svg", sanitize(a.Config.Timeline)))
		if err := viz.PlotTimeline(timeline, file); err != nil {
			logger.Error("failed-to-plot-timeline", zap.String("file", file), zap.Error(err))
		}
	}
	return nil
}
