package cityjson

import "errors"

// Error kinds of the converter. All of them are fatal: callers stop at the
// first failure instead of skipping input.
var (
	// ErrVersionUnsupported flags documents other than CityJSON 1.1 or 2.0.
	ErrVersionUnsupported = errors.New("cityjson: unsupported version")
	// ErrSchemaViolation flags structural problems: wrong type members,
	// out-of-range indices, dangling references, non-positive scales.
	ErrSchemaViolation = errors.New("cityjson: schema violation")
	// ErrDuplicateFeatureID flags a feature id (or descendant id) that a
	// merge has already assembled.
	ErrDuplicateFeatureID = errors.New("cityjson: duplicate feature id")
	// ErrParse flags malformed JSON input.
	ErrParse = errors.New("cityjson: parse error")
)
