package dsl

import (
	"fmt"
	"strings"
	"time"
)

//Phase marks whether an Event opens or closes an operation
type Phase int

const (
	PhaseUnknown Phase = iota
	Begin
	End
)

func (p Phase) String() string {
	switch p {
	case Begin:
		return "begin"
	case End:
		return "end"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

//Event is the begin or end marker extracted from a Record
type Event struct {
	Identity   string
	Occurrence string
	RequestID  string
	Hostname   string
	Timestamp  time.Time
	Phase      Phase
}

//Signature is the correlation key: a Begin is closed by the End that shares its Signature
type Signature struct {
	RequestID  string
	Hostname   string
	Identity   string
	Occurrence string
}

func (s Signature) String() string {
	if s.Occurrence == "" {
		return fmt.Sprintf("%s/%s/%s", s.RequestID, s.Hostname, s.Identity)
	}
	return fmt.Sprintf("%s/%s/%s#%s", s.RequestID, s.Hostname, s.Identity, s.Occurrence)
}

func (e Event) Signature() Signature {
	return Signature{
		RequestID:  e.RequestID,
		Hostname:   e.Hostname,
		Identity:   e.Identity,
		Occurrence: e.Occurrence,
	}
}

//NewEvent extracts an Event from a Record.
//
//Records without a begin/end phase marker, a request id or a parseable timestamp are not events -- NewEvent returns false and the caller should skip the record.
func NewEvent(record Record) (Event, bool) {
	phase := parsePhase(record)
	if phase == PhaseUnknown {
		return Event{}, false
	}

	requestID, ok := record.String("evt.args.req_id", "evt.req_id", "req_id")
	if !ok {
		return Event{}, false
	}

	timestamp, ok := record.Time("time")
	if !ok {
		return Event{}, false
	}

	module, _ := record.String("name")
	operation, _ := record.String("evt.name")
	stack, _ := record.String("evt.stack")
	if stack == "" && operation == "" && module == "" {
		return Event{}, false
	}

	hostname, _ := record.String("hostname")
	occurrence, _ := record.String("evt.id")

	return Event{
		Identity:   DeriveIdentity(module, operation, stack),
		Occurrence: occurrence,
		RequestID:  requestID,
		Hostname:   hostname,
		Timestamp:  timestamp,
		Phase:      phase,
	}, true
}

//DeriveIdentity names an operation.
//An explicit call-stack wins; otherwise the operation is qualified by its module unless it already starts with it.
func DeriveIdentity(module, operation, stack string) string {
	switch {
	case stack != "":
		return stack
	case operation == module:
		return operation
	case module == "":
		return operation
	case operation == "":
		return module
	case strings.HasPrefix(operation, module):
		return operation
	}
	return module + "." + operation
}

func parsePhase(record Record) Phase {
	ph, ok := record.String("evt.ph")
	if !ok {
		return PhaseUnknown
	}
	switch ph {
	case "b", "begin":
		return Begin
	case "e", "end":
		return End
	}
	return PhaseUnknown
}
