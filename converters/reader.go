// Package converters turns raw log streams into dsl Records.
//
// Line splitting is chug's: it reads the stream in its own goroutine and hands over one line at a time,
// recognising lager lines on the way.  Everything else is tried as a bunyan-style JSON record.
package converters

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"code.cloudfoundry.org/lager/chug"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

type Format string

const (
	FormatAuto   Format = "auto"
	FormatBunyan Format = "bunyan"
	FormatLager  Format = "lager"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, FormatBunyan, FormatLager:
		return f, nil
	case "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown input format %q (want auto, bunyan or lager)", s)
}

// Line is one line of input.  Record is nil when the line could not be decoded in the requested format.
type Line struct {
	Raw    []byte
	Record Record
}

// Reader yields the Lines of one input stream
type Reader struct {
	format  Format
	entries chan chug.Entry
}

// NewReader starts reading r
func NewReader(r io.Reader, format Format) *Reader {
	entries := make(chan chug.Entry)
	go chug.Chug(r, entries)

	return &Reader{
		format:  format,
		entries: entries,
	}
}

// Next blocks until the next non-blank line is available.
// It returns false at end of input, or when ctx is done (the remaining input is then drained and discarded).
// chug stops at the first read error of any kind, so a failing reader ends the input the same way EOF does.
func (r *Reader) Next(ctx context.Context) (Line, bool) {
	for {
		if ctx.Err() != nil {
			go r.drain()
			return Line{}, false
		}
		select {
		case <-ctx.Done():
			go r.drain()
			return Line{}, false
		case entry, ok := <-r.entries:
			if !ok {
				return Line{}, false
			}
			if len(bytes.TrimSpace(entry.Raw)) == 0 {
				continue
			}
			return Line{Raw: entry.Raw, Record: r.convert(entry)}, true
		}
	}
}

func (r *Reader) convert(entry chug.Entry) Record {
	if entry.IsLager && r.format != FormatBunyan {
		return RecordFromLager(entry)
	}
	if r.format == FormatLager {
		return nil
	}
	record, err := RecordFromBunyan(entry.Raw)
	if err != nil {
		return nil
	}
	return record
}

func (r *Reader) drain() {
	for range r.entries {
	}
}
