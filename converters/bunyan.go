package converters

import (
	"bytes"
	"errors"

	"github.com/bytedance/sonic"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

var errNotJSON = errors.New("not a JSON record")

// RecordFromBunyan decodes a bunyan-style JSON line.
// Anything before the first `{` (a syslog or papertrail prefix, say) is ignored.
func RecordFromBunyan(raw []byte) (Record, error) {
	idx := bytes.IndexByte(raw, '{')
	if idx == -1 {
		return nil, errNotJSON
	}

	var fields map[string]interface{}
	if err := sonic.Unmarshal(raw[idx:], &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotJSON
	}
	return Record(fields), nil
}
