package converters

import (
	"fmt"
	"regexp"
	"strconv"

	"code.cloudfoundry.org/lager/chug"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

var papertrailRegExp *regexp.Regexp

func init() {
	papertrailRegExp = regexp.MustCompile(`\[job=([a-zA-Z0-9_-]+) index=(\d+)\]`)
}

// RecordFromLager turns a lager log line into a Record.
//
// The lager Data becomes the top level of the Record (so `evt`, `req_id` and `hostname` are read from there),
// Source becomes `name` and Timestamp becomes `time`.
// Lines shipped through papertrail carry a `[job=X index=N]` prefix -- when Data has no hostname, X/N is used.
func RecordFromLager(entry chug.Entry) Record {
	record := Record{}
	for k, v := range entry.Log.Data {
		record[k] = v
	}

	record["name"] = entry.Log.Source
	record["time"] = entry.Log.Timestamp
	record["msg"] = entry.Log.Message
	if entry.Log.Session != "" {
		record["session"] = entry.Log.Session
	}

	if _, ok := record.String("hostname"); !ok {
		if vm, ok := vmFromPapertrail(entry.Raw); ok {
			record["hostname"] = vm
		}
	}

	return record
}

func vmFromPapertrail(raw []byte) (string, bool) {
	result := papertrailRegExp.FindSubmatch(raw)
	if len(result) != 3 {
		return "", false
	}
	index, err := strconv.Atoi(string(result[2]))
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s/%d", result[1], index), true
}
