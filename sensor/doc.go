// Package sensor analyzes time-indexed cyclone sensor readings.
//
// A run loads a workbook or CSV into a Table, explores it, cleans it and
// flags candidate shutdowns:
//
//	raw, err := sensor.Load("data.xlsx", "")
//	report := sensor.Explore(raw)
//	clean, stats, err := sensor.Clean(raw, sensor.DefaultCleanOptions())
//	res, err := sensor.DetectShutdowns(clean, sensor.DefaultShutdownOptions())
//
// Cleaning parses each column to float64 with NaN for missing samples,
// forward-fills gaps of at most two samples and drops rows holding a
// negative temperature. Shutdown detection compares a trailing rolling mean
// against a fixed threshold, one sample at a time.
//
// Charts renders the overview, correlation heatmap and shutdown charts as
// PNG files.
package sensor
