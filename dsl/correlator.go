package dsl

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloudfoundry-incubator/rendezvous/metrics"
)

//ErrUnknownPhase is returned by Observe for an Event that is neither a Begin nor an End.
//NewEvent never produces such an Event so seeing one means a caller built it by hand.
var ErrUnknownPhase = errors.New("event is neither begin nor end")

//Correlator pairs Begin Events with their End Events.
//
//It owns the open Begins (keyed by Signature) and every completed Span, grouped by request id in the order requests were first completed.
//A Correlator is built once per run and is not safe for concurrent use.
type Correlator struct {
	logger   *zap.Logger
	counters *metrics.Counters
	open     map[Signature]Event
	requests *GroupedSpans
}

//NewCorrelator returns an empty Correlator.  A nil counters gets a private set.
func NewCorrelator(logger *zap.Logger, counters *metrics.Counters) *Correlator {
	if counters == nil {
		counters = metrics.New()
	}
	return &Correlator{
		logger:   logger.Named("correlator"),
		counters: counters,
		open:     map[Signature]Event{},
		requests: NewGroupedSpans(),
	}
}

//Observe feeds one Event to the Correlator.
//
//An End that closes an open Begin yields the completed Span and true.
//Duplicate Begins keep the earlier Begin and log a warning; Ends without a Begin are dropped.
//Neither is an error -- only an Event with an unknown phase is.
func (c *Correlator) Observe(event Event) (Span, bool, error) {
	switch event.Phase {
	case Begin:
		c.counters.Events.WithLabelValues("begin").Inc()
		c.begin(event)
		return Span{}, false, nil
	case End:
		c.counters.Events.WithLabelValues("end").Inc()
		span, ok := c.end(event)
		return span, ok, nil
	}
	return Span{}, false, fmt.Errorf("%w: %s (%s)", ErrUnknownPhase, event.Signature(), event.Phase)
}

func (c *Correlator) begin(event Event) {
	signature := event.Signature()
	if previous, isOpen := c.open[signature]; isOpen {
		c.counters.DuplicateBegins.Inc()
		c.logger.Warn("duplicate-begin",
			zap.Stringer("signature", signature),
			zap.Time("open-since", previous.Timestamp),
			zap.Time("ignored", event.Timestamp),
		)
		return
	}

	c.open[signature] = event
	c.counters.OpenBegins.Set(float64(len(c.open)))
}

func (c *Correlator) end(event Event) (Span, bool) {
	signature := event.Signature()
	begin, isOpen := c.open[signature]
	if !isOpen {
		c.counters.OrphanEnds.Inc()
		c.logger.Debug("orphan-end", zap.Stringer("signature", signature))
		return Span{}, false
	}

	delete(c.open, signature)
	c.counters.OpenBegins.Set(float64(len(c.open)))

	span := NewSpan(begin, event)
	if span.Elapsed < 0 {
		c.counters.NegativeElapsed.Inc()
		c.logger.Warn("negative-elapsed",
			zap.Stringer("signature", signature),
			zap.Stringer("span", span),
		)
	}

	c.counters.Spans.Inc()
	c.counters.SpanDuration.Observe(span.Elapsed.Seconds())
	c.requests.Append(span.RequestID, span)

	return span, true
}

//Requests returns every completed Span grouped by request id (RequestEvents)
func (c *Correlator) Requests() *GroupedSpans {
	return c.requests
}

//Open returns the number of Begins still waiting for their End
func (c *Correlator) Open() int {
	return len(c.open)
}

//LogOpen reports every Begin that never saw its End.  Called once the input is exhausted.
func (c *Correlator) LogOpen() {
	for signature, begin := range c.open {
		c.logger.Debug("unmatched-begin",
			zap.Stringer("signature", signature),
			zap.Time("began", begin.Timestamp),
		)
	}
}
