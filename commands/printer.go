package commands

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/google/uuid"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

const streamTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type palette struct {
	begin func(a ...interface{}) string
	end   func(a ...interface{}) string
	host  func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	colors := []*color.Color{
		color.New(color.FgGreen),
		color.New(color.FgRed),
		color.New(color.FgCyan),
	}
	for _, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return palette{
		begin: colors[0].SprintFunc(),
		end:   colors[1].SprintFunc(),
		host:  colors[2].SprintFunc(),
	}
}

// Printer writes the live output: condensed stream lines, raw JSON, or both.
//
// A Begin is filtered as the zero-length span it opens, so begins disappear as soon as a minimum duration is set.
// Until the End arrives there is no telling whether the span will be slow enough to show.
type Printer struct {
	w      io.Writer
	stream bool
	raw    bool
	filter Matcher
	colors palette
}

type PrinterOptions struct {
	Stream      bool
	Raw         bool
	Color       bool
	MinDuration time.Duration
	Identity    *regexp.Regexp
}

func NewPrinter(w io.Writer, options PrinterOptions) *Printer {
	return &Printer{
		w:      w,
		stream: options.Stream,
		raw:    options.Raw,
		filter: And(MatchIdentity(options.Identity), MatchMinDuration(options.MinDuration)),
		colors: newPalette(options.Color),
	}
}

type rawBegin struct {
	Phase      string    `json:"phase"`
	RequestID  string    `json:"req_id"`
	Hostname   string    `json:"hostname"`
	Identity   string    `json:"identity"`
	Occurrence string    `json:"occurrence,omitempty"`
	Time       time.Time `json:"time"`
}

type rawSpan struct {
	Phase     string    `json:"phase"`
	RequestID string    `json:"req_id"`
	Hostname  string    `json:"hostname"`
	Identity  string    `json:"identity"`
	Start     time.Time `json:"start"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// Begin prints an opening event
func (p *Printer) Begin(event Event) error {
	opened := Span{RequestID: event.RequestID, Identity: event.Identity, Hostname: event.Hostname, Start: event.Timestamp}
	if !p.filter.Match(opened) {
		return nil
	}

	if p.raw {
		err := p.writeJSON(rawBegin{
			Phase:      "begin",
			RequestID:  event.RequestID,
			Hostname:   event.Hostname,
			Identity:   event.Identity,
			Occurrence: event.Occurrence,
			Time:       event.Timestamp,
		})
		if err != nil {
			return err
		}
	}

	if p.stream {
		_, err := fmt.Fprintf(p.w, "%s %s %s %s %8s %s\n",
			event.Timestamp.UTC().Format(streamTimeFormat),
			p.colors.host(padHostname(event.Hostname)),
			event.RequestID,
			p.colors.begin("-->"),
			"",
			event.Identity,
		)
		return err
	}

	return nil
}

// End prints a completed span, at the time its End was seen
func (p *Printer) End(span Span) error {
	if !p.filter.Match(span) {
		return nil
	}

	if p.raw {
		err := p.writeJSON(rawSpan{
			Phase:     "end",
			RequestID: span.RequestID,
			Hostname:  span.Hostname,
			Identity:  span.Identity,
			Start:     span.Start,
			ElapsedMs: span.ElapsedMs(),
		})
		if err != nil {
			return err
		}
	}

	if p.stream {
		_, err := fmt.Fprintf(p.w, "%s %s %s %s %8s %s\n",
			span.End().UTC().Format(streamTimeFormat),
			p.colors.host(padHostname(span.Hostname)),
			span.RequestID,
			p.colors.end("<--"),
			fmt.Sprintf("%dms", span.ElapsedMs()),
			span.Identity,
		)
		return err
	}

	return nil
}

func (p *Printer) writeJSON(v interface{}) error {
	out, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.w.Write(append(out, '\n'))
	return err
}

// padHostname shortens UUID hostnames to their first segment and pads to 8 columns
func padHostname(hostname string) string {
	if _, err := uuid.Parse(hostname); err == nil {
		hostname = strings.SplitN(hostname, "-", 2)[0]
	}
	return fmt.Sprintf("%-8s", hostname)
}
