package cityjson

import (
	"sort"

	gojson "github.com/goccy/go-json"
)

// extraFields returns the members of an encoded JSON object that are not in
// known, keeping their raw encoding. Returns nil when there are none.
func extraFields(data []byte, known []string) (map[string]gojson.RawMessage, error) {
	var all map[string]gojson.RawMessage
	if err := gojson.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// appendExtras splices extra members into an encoded JSON object, in sorted
// key order so output stays deterministic.
func appendExtras(obj []byte, extra map[string]gojson.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return obj, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := append([]byte(nil), obj[:len(obj)-1]...)
	for _, k := range keys {
		if len(out) > 1 {
			out = append(out, ',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')
		out = append(out, extra[k]...)
	}
	return append(out, '}'), nil
}
