package sensor

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Default sensor channels of the cyclone data set.
const (
	InletGasTemp     = "Cyclone_Inlet_Gas_Temp"
	MaterialTemp     = "Cyclone_Material_Temp"
	OutletGasDraft   = "Cyclone_Outlet_Gas_draft"
	ConeDraft        = "Cyclone_cone_draft"
	GasOutletTemp    = "Cyclone_Gas_Outlet_Temp"
	InletDraft       = "Cyclone_Inlet_Draft"
	TimeColumn       = "time"
	temperatureToken = "Temp"
)

// DefaultColumns lists the sensor columns cleaned by default, in file order.
var DefaultColumns = []string{
	InletGasTemp,
	MaterialTemp,
	OutletGasDraft,
	ConeDraft,
	GasOutletTemp,
	InletDraft,
}

// IsTemperature reports whether a column holds a temperature reading.
func IsTemperature(name string) bool {
	return strings.Contains(name, temperatureToken)
}

// Column is one named sensor channel. Raw columns carry Text; numeric
// columns carry Values, where NaN marks a missing sample.
type Column struct {
	Name   string
	Text   []string
	Values []float64
}

// Numeric reports whether the column has been parsed.
func (c *Column) Numeric() bool {
	return c.Values != nil
}

// Len returns the number of samples.
func (c *Column) Len() int {
	if c.Numeric() {
		return len(c.Values)
	}
	return len(c.Text)
}

// Floats returns the numeric view of the column, parsing text if needed.
func (c *Column) Floats() []float64 {
	if c.Numeric() {
		return c.Values
	}
	return ParseFloats(c.Text)
}

// Table is a time-indexed set of sensor columns of equal length.
type Table struct {
	Time    []time.Time
	Columns []*Column
}

// NewTable creates an empty table over the given time index.
func NewTable(index []time.Time) *Table {
	return &Table{Time: index}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Time)
}

// AddText appends a raw text column.
func (t *Table) AddText(name string, cells []string) error {
	if len(cells) != t.Len() {
		return fmt.Errorf("%w: column %s has %d rows, table has %d", ErrLengthMismatch, name, len(cells), t.Len())
	}
	if _, ok := t.Column(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	t.Columns = append(t.Columns, &Column{Name: name, Text: cells})
	return nil
}

// AddValues appends a numeric column.
func (t *Table) AddValues(name string, values []float64) error {
	if len(values) != t.Len() {
		return fmt.Errorf("%w: column %s has %d rows, table has %d", ErrLengthMismatch, name, len(values), t.Len())
	}
	if _, ok := t.Column(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	if values == nil {
		values = []float64{}
	}
	t.Columns = append(t.Columns, &Column{Name: name, Values: values})
	return nil
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Head returns a table sharing storage with t, limited to the first n rows.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, t.Len()))
	head := &Table{Time: t.Time[:n]}
	for _, c := range t.Columns {
		hc := &Column{Name: c.Name}
		if c.Numeric() {
			hc.Values = c.Values[:n]
		} else {
			hc.Text = c.Text[:n]
		}
		head.Columns = append(head.Columns, hc)
	}
	return head
}

// Start returns the first timestamp, or the zero time for an empty table.
func (t *Table) Start() time.Time {
	if t.Len() == 0 {
		return time.Time{}
	}
	return slices.MinFunc(t.Time, func(a, b time.Time) int { return a.Compare(b) })
}

// End returns the last timestamp, or the zero time for an empty table.
func (t *Table) End() time.Time {
	if t.Len() == 0 {
		return time.Time{}
	}
	return slices.MaxFunc(t.Time, func(a, b time.Time) int { return a.Compare(b) })
}

// ParseFloat converts a cell to a number. Blank, unparseable or non-finite
// cells are NaN.
func ParseFloat(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseFloats converts every cell with ParseFloat.
func ParseFloats(cells []string) []float64 {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		out[i] = ParseFloat(cell)
	}
	return out
}

// countNaN returns the number of missing samples.
func countNaN(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
