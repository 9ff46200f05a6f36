package domain

import "sort"

// Measurement codes used by the alert scans. The parsed meteogram may carry
// additional codes; the engine ignores anything it does not recognize.
const (
	FieldTmax    = "Tmax"    // maximum temperature, Kelvin
	FieldTmin    = "Tmin"    // minimum temperature, Kelvin
	FieldTave    = "Tave"    // average temperature, Kelvin
	FieldTDave   = "TDave"   // average dew point, Kelvin
	FieldUmax    = "Umax"    // wind vector U component, m/s
	FieldVmax    = "Vmax"    // wind vector V component, m/s
	FieldPrecMax = "PRECmax" // precipitation rate, mm/h
)

// Measurements is one sparse set of measurement code → value pairs.
type Measurements map[string]float64

// TimeSeries maps seconds-since-midnight-UTC-0 to the measurements taken at
// that offset. Keys are unique per polygon; insertion order carries no meaning.
type TimeSeries map[int]Measurements

// PolygonSeries is the parsed meteogram: polygon identifier → time series.
// It is produced by the upstream parser and only ever read here.
type PolygonSeries map[string]TimeSeries

// Sample pairs a time offset with its measurements for ordered scanning.
type Sample struct {
	Seconds int
	Values  Measurements
}

// sortedSamples flattens a time series into samples ordered by ascending
// seconds. Scans depend on this ordering: when two samples tie on the
// extremal value, the earlier one wins.
func sortedSamples(ts TimeSeries) []Sample {
	samples := make([]Sample, 0, len(ts))
	for seconds, values := range ts {
		samples = append(samples, Sample{Seconds: seconds, Values: values})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Seconds < samples[j].Seconds })
	return samples
}
