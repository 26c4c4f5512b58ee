/*
Rendezvous - where begins meet their ends

services emit begin/end records around the operations they perform
rendezvous pairs those records up and tells you where the time went

The dsl package has a number of different nouns:

- Record: a single decoded log record, a loosely typed map
- Event: the begin or end marker extracted from a Record
- Signature: the (request, host, identity, occurrence) key used to pair a Begin with its End
- Correlator: owns the open Begins and turns matching Ends into Spans
- Span: a completed begin/end pair with a start and an elapsed duration
- Spans: an ordered list of Spans, can be filtered, sorted and grouped
- GroupedSpans: Spans grouped by an arbitrary key, in the order the keys were first seen
- Durations: an array of time.Durations with some convenience helpers (min, max, mean, median, histogram)
- Report: per top-level operation statistics built from every request's Spans
- Timeline: the nested start/end trace of a single request
- Matchers: matchers take a Span and return a boolean
- Getters: getters pull data out of Spans

A typical run feeds every Record through NewEvent and Correlator.Observe, then hands
Correlator.Requests() to BuildReport or TimelineFor.
*/
package dsl
