package dsl

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

//Record is a single decoded log record.  Converters produce Records, NewEvent consumes them.
type Record map[string]interface{}

//Get returns the value at the passed in path.
//A path can be a full-blown JSON path (e.g. `evt.args.req_id`) -- Get will traverse nested objects as far as possible to fetch the corresponding value.
func (r Record) Get(path string) (interface{}, bool) {
	return getSubKey(r, strings.Split(path, "."))
}

//String tries each path in order and returns the first value that can be represented as a non-empty string.
//Numbers are formatted without exponent so that `{"id": 12}` and `{"id": "12"}` read the same.
func (r Record) String(paths ...string) (string, bool) {
	for _, path := range paths {
		v, ok := r.Get(path)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

//Time returns the timestamp stored at path.
//RFC3339 strings, time.Time values and epoch seconds (number or numeric string) are understood.
func (r Record) Time(path string) (time.Time, bool) {
	v, ok := r.Get(path)
	if !ok {
		return time.Time{}, false
	}

	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case float64:
		return epochSeconds(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochSeconds(f), true
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return epochSeconds(f), true
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}

	return time.Time{}, false
}

func epochSeconds(f float64) time.Time {
	return time.Unix(0, int64(f*1e9))
}

func getSubKey(data map[string]interface{}, subKeys []string) (interface{}, bool) {
	v, ok := data[subKeys[0]]
	if !ok {
		return nil, false
	}
	if len(subKeys) == 1 {
		return v, true
	}
	switch subData := v.(type) {
	case map[string]interface{}:
		return getSubKey(subData, subKeys[1:])
	case Record:
		return getSubKey(subData, subKeys[1:])
	}
	return nil, false
}

func scalarString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	}
	return "", false
}
