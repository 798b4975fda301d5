package sensor

import (
	"fmt"
	"math"
	"time"
)

// Shutdown detection defaults.
const (
	DefaultWindow    = 12
	DefaultThreshold = 300.0
)

// ShutdownOptions configures DetectShutdowns.
type ShutdownOptions struct {
	Column    string
	Window    int
	Threshold float64
}

// DefaultShutdownOptions watches the inlet gas temperature.
func DefaultShutdownOptions() ShutdownOptions {
	return ShutdownOptions{
		Column:    InletGasTemp,
		Window:    DefaultWindow,
		Threshold: DefaultThreshold,
	}
}

// ShutdownResult holds the per-sample outcome of shutdown detection.
type ShutdownResult struct {
	Column    string
	Threshold float64
	Time      []time.Time
	Values    []float64
	Rolling   []float64
	Flags     []bool
	Count     int
	Percent   float64
}

// Period is a contiguous run of flagged samples.
type Period struct {
	Start   time.Time
	End     time.Time
	Samples int
}

// Duration returns the time between the first and last flagged sample.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// RollingMean returns the trailing mean over window samples. The first
// window-1 results are NaN, as is any window holding a NaN.
func RollingMean(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	out := make([]float64, len(values))
	sum := 0.0
	gaps := 0
	for i, v := range values {
		if !finite(v) {
			gaps++
		} else {
			sum += v
		}
		if i >= window {
			old := values[i-window]
			if !finite(old) {
				gaps--
			} else {
				sum -= old
			}
		}
		if i < window-1 || gaps > 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DetectShutdowns flags every sample whose rolling mean lies below the
// threshold. Samples without a rolling mean are never flagged.
func DetectShutdowns(t *Table, opts ShutdownOptions) (*ShutdownResult, error) {
	if opts.Column == "" {
		opts.Column = InletGasTemp
	}
	c, ok := t.Column(opts.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, opts.Column)
	}
	if !c.Numeric() {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, opts.Column)
	}

	rolling, err := RollingMean(c.Values, opts.Window)
	if err != nil {
		return nil, err
	}

	res := &ShutdownResult{
		Column:    opts.Column,
		Threshold: opts.Threshold,
		Time:      t.Time,
		Values:    c.Values,
		Rolling:   rolling,
		Flags:     make([]bool, len(rolling)),
	}
	for i, r := range rolling {
		if r < opts.Threshold {
			res.Flags[i] = true
			res.Count++
		}
	}
	if len(rolling) > 0 {
		res.Percent = float64(res.Count) / float64(len(rolling)) * 100
	}
	return res, nil
}

// Periods groups consecutive flagged samples.
func (r *ShutdownResult) Periods() []Period {
	var periods []Period
	for i := 0; i < len(r.Flags); {
		if !r.Flags[i] {
			i++
			continue
		}
		end := i
		for end < len(r.Flags) && r.Flags[end] {
			end++
		}
		periods = append(periods, Period{
			Start:   r.Time[i],
			End:     r.Time[end-1],
			Samples: end - i,
		})
		i = end
	}
	return periods
}
