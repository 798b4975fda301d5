package sensor

import (
	"fmt"
	"math"
)

// DefaultGapFillLimit is the longest run of missing samples that is filled.
const DefaultGapFillLimit = 2

// CleanOptions selects the columns to clean and the gap-fill limit.
type CleanOptions struct {
	Columns      []string
	GapFillLimit int
}

// DefaultCleanOptions returns the cleaning setup for the cyclone data set.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		Columns:      append([]string(nil), DefaultColumns...),
		GapFillLimit: DefaultGapFillLimit,
	}
}

// ColumnStats counts what cleaning did to one column.
type ColumnStats struct {
	Name string
	// Missing is the number of samples that were blank or unparseable.
	Missing int
	// Filled is the number of missing samples replaced by forward fill.
	Filled int
	// Negative is the number of rows dropped for a negative value in this
	// column. A row negative in two columns is counted in both.
	Negative int
}

// CleanStats summarizes a Clean run.
type CleanStats struct {
	RowsIn  int
	RowsOut int
	Columns []ColumnStats
}

// Dropped returns the number of rows removed.
func (s CleanStats) Dropped() int {
	return s.RowsIn - s.RowsOut
}

// Clean parses the configured columns to numbers, forward-fills short
// missing runs and drops every row holding a negative temperature. Columns
// not listed in opts are carried through unparsed. The raw table is not
// modified.
func Clean(raw *Table, opts CleanOptions) (*Table, CleanStats, error) {
	if opts.Columns == nil {
		opts.Columns = DefaultColumns
	}
	if opts.GapFillLimit < 0 {
		opts.GapFillLimit = 0
	}

	stats := CleanStats{RowsIn: raw.Len()}
	parsed := make(map[string][]float64, len(opts.Columns))
	for _, name := range opts.Columns {
		if _, dup := parsed[name]; dup {
			return nil, stats, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		c, ok := raw.Column(name)
		if !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		values := append([]float64(nil), c.Floats()...)
		missing := countNaN(values)
		filled := ForwardFill(values, opts.GapFillLimit)
		parsed[name] = values
		stats.Columns = append(stats.Columns, ColumnStats{
			Name:    name,
			Missing: missing,
			Filled:  filled,
		})
	}

	keep := make([]bool, raw.Len())
	for row := range keep {
		keep[row] = true
		for i, name := range opts.Columns {
			if !IsTemperature(name) {
				continue
			}
			if v := parsed[name][row]; v < 0 {
				keep[row] = false
				stats.Columns[i].Negative++
			}
		}
	}

	clean := NewTable(filter(raw.Time, keep))
	for _, c := range raw.Columns {
		var err error
		if values, ok := parsed[c.Name]; ok {
			err = clean.AddValues(c.Name, filter(values, keep))
		} else if c.Numeric() {
			err = clean.AddValues(c.Name, filter(c.Values, keep))
		} else {
			err = clean.AddText(c.Name, filter(c.Text, keep))
		}
		if err != nil {
			return nil, stats, err
		}
	}
	stats.RowsOut = clean.Len()
	return clean, stats, nil
}

// ForwardFill replaces missing samples in place with the last observed
// value, but only for runs of at most limit consecutive missing samples.
// Longer runs stay missing in full, as do leading missing samples. It
// returns the number of samples filled.
func ForwardFill(values []float64, limit int) int {
	if limit <= 0 {
		return 0
	}
	filled := 0
	last := math.NaN()
	for i := 0; i < len(values); {
		if !math.IsNaN(values[i]) {
			last = values[i]
			i++
			continue
		}
		end := i
		for end < len(values) && math.IsNaN(values[end]) {
			end++
		}
		if end-i <= limit && !math.IsNaN(last) {
			for j := i; j < end; j++ {
				values[j] = last
			}
			filled += end - i
		}
		i = end
	}
	return filled
}

func filter[T any](values []T, keep []bool) []T {
	out := make([]T, 0, len(values))
	for i, v := range values {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}
