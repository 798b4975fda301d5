package sensor

import "errors"

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn is returned when a column name is used twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrLengthMismatch is returned when a column and the time index differ in length.
	ErrLengthMismatch = errors.New("column length does not match time index")

	// ErrBadTimestamp is returned when a time cell cannot be parsed.
	ErrBadTimestamp = errors.New("unparseable timestamp")

	// ErrEmptySheet is returned when a workbook sheet or CSV has no header row.
	ErrEmptySheet = errors.New("no header row")

	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported data file format")

	// ErrInvalidWindow is returned for a rolling window smaller than one sample.
	ErrInvalidWindow = errors.New("rolling window must be at least 1")

	// ErrNotNumeric is returned when an operation needs a parsed column.
	ErrNotNumeric = errors.New("column is not numeric")
)
