package dsl

import (
	"fmt"
	"time"
)

//Span is a completed Begin/End pair
type Span struct {
	RequestID string
	Identity  string
	Hostname  string
	Start     time.Time
	Elapsed   time.Duration
}

//NewSpan pairs a Begin with its End.  Elapsed is not clamped: clock skew between hosts can make it negative.
func NewSpan(begin Event, end Event) Span {
	return Span{
		RequestID: begin.RequestID,
		Identity:  begin.Identity,
		Hostname:  begin.Hostname,
		Start:     begin.Timestamp,
		Elapsed:   end.Timestamp.Sub(begin.Timestamp),
	}
}

//End returns the time the span finished
func (s Span) End() time.Time {
	return s.Start.Add(s.Elapsed)
}

//ElapsedMs is the elapsed time in whole milliseconds, the unit reports are computed in
func (s Span) ElapsedMs() int64 {
	return s.Elapsed.Milliseconds()
}

func (s Span) String() string {
	return fmt.Sprintf("%s %s@%s %s", s.RequestID, s.Identity, s.Hostname, s.Elapsed)
}
