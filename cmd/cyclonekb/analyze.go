package main

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/cyclonekb/sensor"
	"github.com/urfave/cli/v2"
)

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("data") {
		cfg.Sensor.Data = c.String("data")
	}
	if c.IsSet("sheet") {
		cfg.Sensor.Sheet = c.String("sheet")
	}
	if c.IsSet("out") {
		cfg.Sensor.ChartDir = c.String("out")
	}
	w := c.App.Writer
	logger := slog.Default().With("component", "analyze")

	fmt.Fprintf(w, "Loading data from %s...\n", cfg.Sensor.Data)
	raw, err := sensor.Load(cfg.Sensor.Data, cfg.Sensor.Sheet)
	if err != nil {
		return fmt.Errorf("failed to load sensor data: %w", err)
	}
	fmt.Fprintf(w, "Loaded %d records\n\n", raw.Len())

	fmt.Fprintln(w, "=== Data Exploration ===")
	if _, err := sensor.Explore(raw).WriteTo(w); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n=== Data Cleaning ===")
	clean, stats, err := sensor.Clean(raw, cfg.CleanOptions())
	if err != nil {
		return fmt.Errorf("failed to clean sensor data: %w", err)
	}
	for _, cs := range stats.Columns {
		if cs.Missing > 0 {
			fmt.Fprintf(w, "  %s: %d missing (%.1f%%), %d filled\n",
				cs.Name, cs.Missing, float64(cs.Missing)/float64(stats.RowsIn)*100, cs.Filled)
		}
		if cs.Negative > 0 {
			fmt.Fprintf(w, "  Removed %d negative values from %s\n", cs.Negative, cs.Name)
		}
	}
	fmt.Fprintf(w, "Clean dataset: %d records\n", clean.Len())

	if !c.Bool("no-charts") {
		fmt.Fprintln(w, "\n=== Creating Charts ===")
		charts := cfg.Charts()
		path, err := charts.Overview(clean)
		if err != nil {
			return fmt.Errorf("failed to render overview: %w", err)
		}
		fmt.Fprintf(w, "Saved %s\n", path)

		path, err = charts.Heatmap(sensor.Correlation(clean), clean.Names())
		if err != nil {
			return fmt.Errorf("failed to render heatmap: %w", err)
		}
		fmt.Fprintf(w, "Saved %s\n", path)
	}

	fmt.Fprintln(w, "\n=== Shutdown Detection ===")
	res, err := sensor.DetectShutdowns(clean, cfg.ShutdownOptions())
	if err != nil {
		return fmt.Errorf("failed to detect shutdowns: %w", err)
	}
	fmt.Fprintf(w, "Potential shutdown periods: %d time points (%.1f%%)\n", res.Count, res.Percent)

	periods := res.Periods()
	fmt.Fprintf(w, "Contiguous low-temperature periods: %d\n", len(periods))
	for i, p := range longest(periods, 5) {
		fmt.Fprintf(w, "  %d. %s to %s (%d samples)\n", i+1,
			p.Start.Format(time.DateTime), p.End.Format(time.DateTime), p.Samples)
	}

	if !c.Bool("no-charts") {
		path, err := cfg.Charts().Shutdown(res)
		if err != nil {
			return fmt.Errorf("failed to render shutdown chart: %w", err)
		}
		fmt.Fprintf(w, "Saved %s\n", path)
	}

	logger.Info("analysis complete", "rows", raw.Len(), "clean_rows", clean.Len(), "flagged", res.Count)
	return nil
}

// longest returns up to n periods with the most samples, longest first.
func longest(periods []sensor.Period, n int) []sensor.Period {
	sorted := append([]sensor.Period(nil), periods...)
	slices.SortStableFunc(sorted, func(a, b sensor.Period) int {
		return b.Samples - a.Samples
	})
	return sorted[:min(n, len(sorted))]
}
