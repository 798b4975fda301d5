package sensor

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Chart file names.
const (
	OverviewFile = "sensor_overview.png"
	HeatmapFile  = "correlation_heatmap.png"
	ShutdownFile = "shutdown_detection_simple.png"
)

// Chart defaults.
const (
	DefaultOverviewSamples = 5000
	DefaultShutdownSamples = 2000
	DefaultDPI             = 150
)

const timeFormat = "01-02\n15:04"

var (
	rawColor       = color.RGBA{R: 31, G: 119, B: 180, A: 180}
	rollingColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	thresholdColor = color.RGBA{R: 255, G: 165, A: 255}
	flagColor      = color.RGBA{R: 214, G: 39, B: 40, A: 180}
)

// Charts renders PNG charts into Dir. Zero fields take their defaults.
type Charts struct {
	Dir             string
	OverviewSamples int
	ShutdownSamples int
	DPI             int
}

// Overview draws one line plot per column over the first OverviewSamples
// rows, two plots per row.
func (c Charts) Overview(t *Table) (string, error) {
	head := t.Head(orDefault(c.OverviewSamples, DefaultOverviewSamples))
	n := len(head.Columns)
	if n == 0 {
		return "", fmt.Errorf("%w: nothing to plot", ErrMissingColumn)
	}

	const cols = 2
	rows := (n + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, cols)
	}
	for i, col := range head.Columns {
		p := timePlot(col.Name)
		if err := addSeries(p, head.Time, col.Floats(), rawColor); err != nil {
			return "", fmt.Errorf("plotting %s: %w", col.Name, err)
		}
		grid[i/cols][i%cols] = p
	}

	return c.render(OverviewFile, 15*vg.Inch, 12*vg.Inch, grid)
}

// Heatmap draws the annotated correlation matrix of the named columns.
func (c Charts) Heatmap(corr *mat.SymDense, names []string) (string, error) {
	n := corr.SymmetricDim()
	if n != len(names) {
		return "", fmt.Errorf("%w: %d names for %d columns", ErrLengthMismatch, len(names), n)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := corrGrid{corr: corr}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	var (
		xys    plotter.XYs
		labels []string
	)
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			xys = append(xys, plotter.XY{X: grid.X(col), Y: grid.Y(r)})
			labels = append(labels, fmt.Sprintf("%.2f", grid.Z(col, r)))
		}
	}
	annot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("annotating heatmap: %w", err)
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = draw.XCenter
		annot.TextStyle[i].YAlign = draw.YCenter
	}

	p := plot.New()
	p.Title.Text = "Sensor Correlation Matrix"
	p.Add(hm, annot)
	p.NominalX(names...)
	reversed := make([]string, n)
	for i, name := range names {
		reversed[n-1-i] = name
	}
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight

	return c.render(HeatmapFile, 10*vg.Inch, 8*vg.Inch, [][]*plot.Plot{{p}})
}

// Shutdown draws the raw and rolling temperature against the threshold,
// above the 0/1 flag series, over the first ShutdownSamples rows.
func (c Charts) Shutdown(res *ShutdownResult) (string, error) {
	n := min(orDefault(c.ShutdownSamples, DefaultShutdownSamples), len(res.Flags))
	times := res.Time[:n]

	temp := timePlot("Temperature Analysis for Shutdown Detection")
	temp.Y.Label.Text = "Temperature (°C)"
	if err := addSeries(temp, times, res.Values[:n], rawColor, "Raw Temperature"); err != nil {
		return "", err
	}
	if err := addSeries(temp, times, res.Rolling[:n], rollingColor, "Rolling Average"); err != nil {
		return "", err
	}
	threshold := plotter.NewFunction(func(float64) float64 { return res.Threshold })
	threshold.Color = thresholdColor
	threshold.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	if n > 0 {
		threshold.XMin = float64(times[0].Unix())
		threshold.XMax = float64(times[n-1].Unix())
	}
	temp.Add(threshold)
	temp.Legend.Add(fmt.Sprintf("Shutdown Threshold (%g°C)", res.Threshold), threshold)
	temp.Legend.Top = true

	flags := timePlot("Detected Shutdown Periods")
	flags.Y.Label.Text = "Shutdown (1=Yes, 0=No)"
	flags.X.Label.Text = "Time"
	flags.Y.Min, flags.Y.Max = -0.05, 1.05
	if n > 0 {
		xys := make(plotter.XYs, n)
		for i := range xys {
			xys[i].X = float64(times[i].Unix())
			if res.Flags[i] {
				xys[i].Y = 1
			}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return "", fmt.Errorf("plotting flags: %w", err)
		}
		line.StepStyle = plotter.PostStep
		line.Color = flagColor
		flags.Add(line)
	}

	return c.render(ShutdownFile, 15*vg.Inch, 6*vg.Inch, [][]*plot.Plot{{temp}, {flags}})
}

func (c Charts) render(name string, w, h vg.Length, plots [][]*plot.Plot) (string, error) {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(orDefault(c.DPI, DefaultDPI)))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for col, p := range plots[r] {
			if p != nil {
				p.Draw(canvases[r][col])
			}
		}
	}

	path := filepath.Join(c.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

func timePlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}
	p.Add(plotter.NewGrid())
	return p
}

// addSeries plots values against times, breaking the line at missing
// samples. The legend entry, if any, is attached to the first segment.
func addSeries(p *plot.Plot, times []time.Time, values []float64, c color.Color, legend ...string) error {
	for i, seg := range segments(times, values) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return err
		}
		line.Color = c
		p.Add(line)
		if i == 0 && len(legend) > 0 {
			p.Legend.Add(legend[0], line)
		}
	}
	return nil
}

func segments(times []time.Time, values []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(times[i].Unix()), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// corrGrid lays the matrix out with its first row at the top.
type corrGrid struct {
	corr *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) {
	n := g.corr.SymmetricDim()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := g.corr.SymmetricDim()
	return g.corr.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
