package sensor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		window int
		want   []float64
	}{
		{"window one", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"window three", []float64{3, 6, 9, 12, 15}, 3, []float64{nan, nan, 6, 9, 12}},
		{"longer than series", []float64{1, 2}, 3, []float64{nan, nan}},
		{"missing sample poisons window", []float64{1, 1, nan, 1, 1, 1, 1}, 2, []float64{nan, 1, nan, nan, 1, 1, 1}},
		{"infinite sample is a gap", []float64{900, math.Inf(1), 900, 900, 100, 100}, 2, []float64{nan, nan, nan, 900, 500, 100}},
		{"empty", nil, 12, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RollingMean(tt.in, tt.window)
			require.NoError(t, err)
			assertFloats(t, tt.want, got)
		})
	}

	_, err := RollingMean([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func shutdownTable(t *testing.T, temps []float64) *Table {
	t.Helper()
	tbl := NewTable(timesFrom(t0, len(temps)))
	require.NoError(t, tbl.AddValues(InletGasTemp, temps))
	return tbl
}

func TestDetectShutdowns_RecoversAfterInfinite(t *testing.T) {
	temps := []float64{900, math.Inf(1), 900, 900, 100, 100, 100, 100}
	opts := ShutdownOptions{Column: InletGasTemp, Window: 2, Threshold: 300}

	res, err := DetectShutdowns(shutdownTable(t, temps), opts)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, false, true, true, true}, res.Flags)
	assert.Equal(t, 3, res.Count)
}

func TestDetectShutdowns_InfiniteCell(t *testing.T) {
	cells := []string{"900", "inf", "900", "900", "100", "100", "100", "100"}
	tbl := NewTable(timesFrom(t0, len(cells)))
	require.NoError(t, tbl.AddText(InletGasTemp, cells))
	cleaned, _, err := Clean(tbl, CleanOptions{Columns: []string{InletGasTemp}, GapFillLimit: 0})
	require.NoError(t, err)

	res, err := DetectShutdowns(cleaned, ShutdownOptions{Column: InletGasTemp, Window: 2, Threshold: 300})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
}

func TestDetectShutdowns(t *testing.T) {
	temps := []float64{900, 900, 100, 100, 100, 900, 900, 900, 100, 100}
	opts := ShutdownOptions{Column: InletGasTemp, Window: 2, Threshold: 300}

	res, err := DetectShutdowns(shutdownTable(t, temps), opts)
	require.NoError(t, err)

	// Rolling: NaN 900 500 100 100 500 900 900 500 100
	want := []bool{false, false, false, true, true, false, false, false, false, true}
	assert.Equal(t, want, res.Flags)
	assert.Equal(t, 3, res.Count)
	assert.InDelta(t, 30.0, res.Percent, 1e-9)

	periods := res.Periods()
	require.Len(t, periods, 2)
	assert.Equal(t, Period{Start: t0.Add(15 * time.Minute), End: t0.Add(20 * time.Minute), Samples: 2}, periods[0])
	assert.Equal(t, 5*time.Minute, periods[0].Duration())
	assert.Equal(t, 1, periods[1].Samples)
}

func TestDetectShutdowns_NoHysteresis(t *testing.T) {
	temps := []float64{310, 290, 310, 290, 310}
	res, err := DetectShutdowns(shutdownTable(t, temps), ShutdownOptions{Window: 1, Threshold: 300})
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true, false, true, false}, res.Flags)
	assert.Len(t, res.Periods(), 2)
}

func TestDetectShutdowns_MissingNeverFlagged(t *testing.T) {
	temps := []float64{nan, 10, 10, nan, 10, 10}
	res, err := DetectShutdowns(shutdownTable(t, temps), ShutdownOptions{Window: 2, Threshold: 300})
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, true, false, false, true}, res.Flags)
}

func TestDetectShutdowns_Defaults(t *testing.T) {
	temps := make([]float64, 24)
	for i := range temps {
		temps[i] = 850
	}
	res, err := DetectShutdowns(shutdownTable(t, temps), DefaultShutdownOptions())
	require.NoError(t, err)

	assert.Zero(t, res.Count)
	assert.Zero(t, res.Percent)
	assert.Empty(t, res.Periods())
	assertFloats(t, temps[11:], res.Rolling[11:])
}

func TestDetectShutdowns_Errors(t *testing.T) {
	tbl := NewTable(timesFrom(t0, 2))
	require.NoError(t, tbl.AddText(InletGasTemp, []string{"1", "2"}))

	_, err := DetectShutdowns(tbl, DefaultShutdownOptions())
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = DetectShutdowns(tbl, ShutdownOptions{Column: "missing", Window: 12})
	assert.ErrorIs(t, err, ErrMissingColumn)

	num := shutdownTable(t, []float64{1, 2})
	_, err = DetectShutdowns(num, ShutdownOptions{Window: 0})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
