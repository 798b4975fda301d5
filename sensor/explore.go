package sensor

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Values outside [UnusualMin, UnusualMax] mark a column as suspicious.
const (
	UnusualMin = -1000.0
	UnusualMax = 2000.0
)

// Summary holds descriptive statistics of the observed samples of a column.
// Fields other than Count are NaN when no sample was observed.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe summarizes values, skipping NaN. Std is the sample standard
// deviation and quartiles interpolate linearly between order statistics.
func Describe(values []float64) Summary {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}

	s := Summary{Count: len(observed)}
	nan := math.NaN()
	if s.Count == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	slices.Sort(observed)
	s.Mean = stat.Mean(observed, nil)
	s.Std = nan
	if s.Count > 1 {
		s.Std = stat.StdDev(observed, nil)
	}
	s.Min = floats.Min(observed)
	s.Max = floats.Max(observed)
	s.Q25 = quantile(observed, 0.25)
	s.Median = quantile(observed, 0.50)
	s.Q75 = quantile(observed, 0.75)
	return s
}

// quantile interpolates linearly at rank p*(n-1) of sorted values.
func quantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// ColumnReport describes one column of a table.
type ColumnReport struct {
	Name           string
	Missing        int
	MissingPercent float64
	Summary        Summary
	Unusual        bool
}

// Report is the result of exploring a table.
type Report struct {
	Rows    int
	Columns int
	Start   time.Time
	End     time.Time
	Details []ColumnReport
}

// Explore computes shape, time range, missing counts and descriptive
// statistics of every column. Text columns are parsed first, so unparseable
// cells count as missing.
func Explore(t *Table) *Report {
	r := &Report{
		Rows:    t.Len(),
		Columns: len(t.Columns),
		Start:   t.Start(),
		End:     t.End(),
	}

	for _, c := range t.Columns {
		values := c.Floats()
		missing := countNaN(values)
		cr := ColumnReport{
			Name:    c.Name,
			Missing: missing,
			Summary: Describe(values),
		}
		if r.Rows > 0 {
			cr.MissingPercent = float64(missing) / float64(r.Rows) * 100
		}
		if cr.Summary.Count > 0 {
			cr.Unusual = cr.Summary.Min < UnusualMin || cr.Summary.Max > UnusualMax
		}
		r.Details = append(r.Details, cr)
	}
	return r
}

// Unusual returns the names of columns flagged as suspicious.
func (r *Report) Unusual() []string {
	var names []string
	for _, d := range r.Details {
		if d.Unusual {
			names = append(names, d.Name)
		}
	}
	return names
}

// WriteTo prints the report as plain text.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Dataset shape: (%d, %d)\n", r.Rows, r.Columns)
	fmt.Fprintf(&b, "Time range: %s to %s\n", r.Start.Format(time.DateTime), r.End.Format(time.DateTime))

	b.WriteString("\nMissing values per column:\n")
	for _, d := range r.Details {
		fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", d.Name, d.Missing, d.MissingPercent)
	}

	b.WriteString("\nBasic statistics:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, d := range r.Details {
		s := d.Summary
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			d.Name, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
	tw.Flush()

	b.WriteString("\nLooking for unusual values:\n")
	for _, d := range r.Details {
		if d.Summary.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: min=%.2f, max=%.2f\n", d.Name, d.Summary.Min, d.Summary.Max)
		if d.Unusual {
			fmt.Fprintf(&b, "    ^ This seems unusual for %s\n", d.Name)
		}
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Correlation returns the Pearson correlation matrix of the table's
// columns, in column order. Each pair uses only rows where both values are
// present; pairs with fewer than two such rows are NaN.
func Correlation(t *Table) *mat.SymDense {
	n := len(t.Columns)
	cols := make([][]float64, n)
	for i, c := range t.Columns {
		cols[i] = c.Floats()
	}

	corr := mat.NewSymDense(max(n, 1), nil)
	if n == 0 {
		return corr
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := pairwiseComplete(cols[i], cols[j])
			v := math.NaN()
			if len(x) > 1 {
				v = stat.Correlation(x, y, nil)
			}
			corr.SetSym(i, j, v)
		}
	}
	return corr
}

func pairwiseComplete(a, b []float64) ([]float64, []float64) {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
