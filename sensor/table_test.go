package sensor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timesFrom(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * 5 * time.Minute)
	}
	return out
}

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestIsTemperature(t *testing.T) {
	assert.True(t, IsTemperature(InletGasTemp))
	assert.True(t, IsTemperature(MaterialTemp))
	assert.True(t, IsTemperature(GasOutletTemp))
	assert.False(t, IsTemperature(OutletGasDraft))
	assert.False(t, IsTemperature(ConeDraft))
	assert.False(t, IsTemperature(InletDraft))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		cell string
		want float64
	}{
		{"12.5", 12.5},
		{" -3 ", -3},
		{"1e3", 1000},
		{"", math.NaN()},
		{"I/O Timeout", math.NaN()},
		{"Not Connect", math.NaN()},
		{"inf", math.NaN()},
		{"-Infinity", math.NaN()},
		{"NaN", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got := ParseFloat(tt.cell)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_AddColumns(t *testing.T) {
	tbl := NewTable(timesFrom(t0, 3))
	require.NoError(t, tbl.AddText("a", []string{"1", "2", "3"}))
	require.NoError(t, tbl.AddValues("b", []float64{1, 2, 3}))

	err := tbl.AddText("a", []string{"1", "2", "3"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	err = tbl.AddValues("c", []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	assert.Equal(t, []string{"a", "b"}, tbl.Names())
	a, ok := tbl.Column("a")
	require.True(t, ok)
	assert.False(t, a.Numeric())
	assert.Equal(t, []float64{1, 2, 3}, a.Floats())
}

func TestTable_Head(t *testing.T) {
	tbl := NewTable(timesFrom(t0, 5))
	require.NoError(t, tbl.AddValues("v", []float64{1, 2, 3, 4, 5}))
	require.NoError(t, tbl.AddText("s", []string{"a", "b", "c", "d", "e"}))

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	v, _ := head.Column("v")
	assert.Equal(t, []float64{1, 2}, v.Values)
	s, _ := head.Column("s")
	assert.Equal(t, []string{"a", "b"}, s.Text)

	assert.Equal(t, 5, tbl.Head(100).Len())
	assert.Equal(t, 0, tbl.Head(-1).Len())
}

func TestTable_TimeRange(t *testing.T) {
	tbl := NewTable(nil)
	assert.True(t, tbl.Start().IsZero())
	assert.True(t, tbl.End().IsZero())

	tbl = NewTable(timesFrom(t0, 4))
	assert.Equal(t, t0, tbl.Start())
	assert.Equal(t, t0.Add(15*time.Minute), tbl.End())
}
