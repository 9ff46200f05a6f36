// Package domain derives per-city weather alerts from meteogram time series.
//
// # Data Source
//
// Meteograms originate from a regional numerical weather model. An upstream
// parser service turns the model's daily ASCII output into a JSON mapping of
// geographic polygon identifiers to time-indexed measurement sets. This
// package never touches the raw ASCII format; it consumes the parsed form.
//
// # Meteogram Conventions
//
// Time keys:
//
//	Seconds since midnight UTC-0, nominally 0–86399. Forecast rows near the
//	end of the window may carry values past 86400 (next calendar day).
//	Display times are in the local zone, a fixed 3 hours behind UTC
//	(UTC-3, no DST). See [DecodeTimeOfDay] for the day-wrap arithmetic.
//
// Measurement codes (sparse — not every row carries every code):
//
//	Tmax, Tmin, Tave, TDave  temperatures in Kelvin (TDave is dew point)
//	Umax, Vmax               wind vector components in m/s
//	PRECmax                  precipitation rate in mm/h
//
// A missing code means "not measured", never zero. Scans skip rows that lack
// the codes their family needs.
//
// # Derived Quantities
//
// Relative humidity is estimated from average temperature and dew point with
// the Magnus-Tetens approximation:
//
//	es(t) = 6.112 * exp(17.27*t / (t + 237.7))
//	rh    = 100 * es(td) / es(t), clamped into [0, 100]
//
// Wind speed is the vector magnitude sqrt(Umax² + Vmax²) converted from m/s
// to km/h. The wind threshold is configured in the squared domain (m/s)² so
// the per-sample comparison avoids a square root.
//
// # Alert Families
//
// Four families are active: high temperature and low temperature (global
// extremum, always emitted when any sample qualifies), low humidity and high
// wind (emitted only past their thresholds). A heavy-rain family exists but
// ships disabled. Each family emits at most one record per city: samples are
// scanned in ascending time order and ties keep the earliest sample, so a
// run over identical input always produces identical output.
package domain
