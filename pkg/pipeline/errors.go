package pipeline

import "github.com/pkg/errors"

// Every pipeline failure wraps one of these sentinels. All are fatal to the
// run: the exporter never executes after an upstream stage fails, so no
// partial output is written.
var (
	// ErrSchemaMismatch signals train/test column sets that cannot be unioned.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrParse signals a malformed numeric value, such as residue left after
	// stripping a percent sign.
	ErrParse = errors.New("parse error")

	// ErrEmptyColumn signals mean imputation over a column with no present
	// values.
	ErrEmptyColumn = errors.New("empty column")

	// ErrMalformedDate signals a composite date string too short for the
	// fixed-offset month/year split.
	ErrMalformedDate = errors.New("malformed date")

	// ErrUnknownCategory signals a categorical value absent from the
	// vocabulary built during preprocessing.
	ErrUnknownCategory = errors.New("unknown category")
)
