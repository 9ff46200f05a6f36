package domain

import (
	"log/slog"
	"math"
)

// Registry resolves internal polygon identifiers to display city names.
// A polygon the registry cannot resolve never produces an alert.
type Registry interface {
	// Polygons lists the registered polygon identifiers in a stable order.
	Polygons() []string

	// DisplayName resolves a polygon identifier to its city name.
	DisplayName(polygonID string) (string, bool)
}

// Thresholds hold the emission limits for the threshold-gated families.
// Temperature families have no threshold; they always emit the extremum.
type Thresholds struct {
	HumidityMin float64 // percent; alert when minimum humidity falls strictly below
	WindMaxSq   float64 // (m/s)²; alert when Umax²+Vmax² exceeds
	RainMax     float64 // mm/h; alert when PRECmax exceeds
}

// DefaultThresholds returns the operational defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HumidityMin: 60,
		WindMaxSq:   11.08,
		RainMax:     15.0,
	}
}

// Engine runs the per-family alert scans over a parsed meteogram. It holds
// no state between runs: every scan takes the series as input and returns a
// fresh result.
type Engine struct {
	registry    Registry
	thresholds  Thresholds
	rainEnabled bool
	logger      *slog.Logger
}

// NewEngine creates a scan engine. Heavy-rain scanning only participates in
// GenerateAll when rainEnabled is set; the family ships disabled.
func NewEngine(registry Registry, thresholds Thresholds, rainEnabled bool, logger *slog.Logger) *Engine {
	return &Engine{
		registry:    registry,
		thresholds:  thresholds,
		rainEnabled: rainEnabled,
		logger:      logger,
	}
}

// GenerateAll runs every active family scan and merges the results into a
// new AlertStore. An absent or empty series yields an empty store.
func (e *Engine) GenerateAll(series PolygonSeries) AlertStore {
	store := make(AlertStore)
	store.MergeFamily(e.ScanHighTemperature(series))
	store.MergeFamily(e.ScanLowTemperature(series))
	store.MergeFamily(e.ScanLowHumidity(series))
	store.MergeFamily(e.ScanHighWind(series))
	if e.rainEnabled {
		store.MergeFamily(e.ScanHeavyRain(series))
	}
	return store
}

// reduceFunc folds ordered samples into at most one alert record.
type reduceFunc func(samples []Sample) (AlertRecord, bool)

// scanFamily applies one family's reduction to every registered polygon.
// Polygons without a display name or without series data are skipped
// silently — partial coverage is normal, not an error.
func (e *Engine) scanFamily(series PolygonSeries, kind AlertKind, reduce reduceFunc) map[string]AlertRecord {
	alerts := make(map[string]AlertRecord)

	for _, polygonID := range e.registry.Polygons() {
		city, ok := e.registry.DisplayName(polygonID)
		if !ok {
			e.logger.Debug("polygon has no display name, skipping", "polygon", polygonID, "kind", kind.Label())
			continue
		}

		ts, ok := series[polygonID]
		if !ok || len(ts) == 0 {
			e.logger.Debug("polygon has no series data, skipping", "polygon", polygonID, "kind", kind.Label())
			continue
		}

		rec, ok := reduce(sortedSamples(ts))
		if !ok {
			continue
		}
		rec.Kind = kind
		rec.Polygon = polygonID
		alerts[city] = rec
	}

	return alerts
}

// ScanHighTemperature finds each city's global maximum of Tmax in Celsius.
// It always emits when at least one sample carries Tmax.
func (e *Engine) ScanHighTemperature(series PolygonSeries) map[string]AlertRecord {
	return e.scanFamily(series, KindHighTemperature, func(samples []Sample) (AlertRecord, bool) {
		best := math.Inf(-1)
		var rec AlertRecord
		found := false

		for _, s := range samples {
			k, ok := s.Values[FieldTmax]
			if !ok {
				continue
			}
			c := KelvinToCelsius(k)
			if c > best {
				best = c
				rec = AlertRecord{Value: c, ValueKelvin: k, Unit: UnitCelsius, Seconds: s.Seconds}
				found = true
			}
		}
		return rec, found
	})
}

// ScanLowTemperature finds each city's global minimum of Tmin in Celsius.
// It always emits when at least one sample carries Tmin.
func (e *Engine) ScanLowTemperature(series PolygonSeries) map[string]AlertRecord {
	return e.scanFamily(series, KindLowTemperature, func(samples []Sample) (AlertRecord, bool) {
		best := math.Inf(1)
		var rec AlertRecord
		found := false

		for _, s := range samples {
			k, ok := s.Values[FieldTmin]
			if !ok {
				continue
			}
			c := KelvinToCelsius(k)
			if c < best {
				best = c
				rec = AlertRecord{Value: c, ValueKelvin: k, Unit: UnitCelsius, Seconds: s.Seconds}
				found = true
			}
		}
		return rec, found
	})
}

// ScanLowHumidity estimates relative humidity from Tave/TDave per sample and
// emits the minimum when it falls strictly below the humidity threshold.
func (e *Engine) ScanLowHumidity(series PolygonSeries) map[string]AlertRecord {
	threshold := e.thresholds.HumidityMin

	return e.scanFamily(series, KindLowHumidity, func(samples []Sample) (AlertRecord, bool) {
		best := math.Inf(1)
		var rec AlertRecord
		found := false

		for _, s := range samples {
			tave, okT := s.Values[FieldTave]
			tdave, okD := s.Values[FieldTDave]
			if !okT || !okD {
				continue
			}
			taveC := KelvinToCelsius(tave)
			tdaveC := KelvinToCelsius(tdave)
			rh := RelativeHumidity(taveC, tdaveC)
			if rh < best {
				best = rh
				rec = AlertRecord{
					Value:      rh,
					Threshold:  threshold,
					Difference: rh - threshold,
					Unit:       UnitPercent,
					Seconds:    s.Seconds,
					AveTempC:   taveC,
					DewPointC:  tdaveC,
				}
				found = true
			}
		}

		if !found || best >= threshold {
			return AlertRecord{}, false
		}
		return rec, true
	})
}

// ScanHighWind finds the strongest wind sample whose squared magnitude
// Umax²+Vmax² exceeds the configured squared threshold, and reports it in
// km/h along with the threshold converted to the same unit.
func (e *Engine) ScanHighWind(series PolygonSeries) map[string]AlertRecord {
	thresholdSq := e.thresholds.WindMaxSq
	thresholdKmh, thresholdOK := WindSpeedKmh(thresholdSq)
	if !thresholdOK {
		e.logger.Warn("wind threshold is negative, high-wind scan disabled", "threshold_sq", thresholdSq)
		return map[string]AlertRecord{}
	}

	return e.scanFamily(series, KindHighWind, func(samples []Sample) (AlertRecord, bool) {
		bestSq := math.Inf(-1)
		bestSeconds := 0
		found := false

		for _, s := range samples {
			u, okU := s.Values[FieldUmax]
			v, okV := s.Values[FieldVmax]
			if !okU || !okV {
				continue
			}
			windSq := u*u + v*v
			if windSq > thresholdSq && windSq > bestSq {
				bestSq = windSq
				bestSeconds = s.Seconds
				found = true
			}
		}

		if !found {
			return AlertRecord{}, false
		}

		kmh, _ := WindSpeedKmh(bestSq)
		return AlertRecord{
			Value:      kmh,
			Threshold:  thresholdKmh,
			Difference: kmh - thresholdKmh,
			Unit:       UnitKmh,
			Seconds:    bestSeconds,
		}, true
	})
}

// ScanHeavyRain finds the heaviest precipitation sample above the rain
// threshold. The family is implemented but excluded from GenerateAll unless
// rain scanning is enabled.
func (e *Engine) ScanHeavyRain(series PolygonSeries) map[string]AlertRecord {
	threshold := e.thresholds.RainMax

	return e.scanFamily(series, KindHeavyRain, func(samples []Sample) (AlertRecord, bool) {
		best := math.Inf(-1)
		bestSeconds := 0
		found := false

		for _, s := range samples {
			rain, ok := s.Values[FieldPrecMax]
			if !ok || rain <= threshold {
				continue
			}
			if rain > best {
				best = rain
				bestSeconds = s.Seconds
				found = true
			}
		}

		if !found {
			return AlertRecord{}, false
		}
		return AlertRecord{
			Value:      best,
			Threshold:  threshold,
			Difference: best - threshold,
			Unit:       UnitMm,
			Seconds:    bestSeconds,
		}, true
	})
}
