package domain

import (
	"fmt"
	"math"
	"time"
)

// Magnus-Tetens coefficients for saturation vapor pressure over water.
const (
	magnusA = 17.27
	magnusB = 237.7
)

const (
	// utcOffsetSeconds converts meteogram offsets (UTC-0) to the local
	// display zone, a fixed 3 hours behind UTC.
	utcOffsetSeconds = 3 * 3600

	secondsPerDay = 86400
)

// KelvinToCelsius converts a temperature from Kelvin to Celsius.
func KelvinToCelsius(k float64) float64 {
	return k - 273.15
}

// RelativeHumidity estimates relative humidity in percent from temperature
// and dew point (both °C) using the Magnus-Tetens approximation. The result
// is clamped into [0, 100]; pathological inputs near the -237.7 °C formula
// singularity clamp rather than propagate NaN or Inf.
func RelativeHumidity(tempC, dewPointC float64) float64 {
	rh := 100 * saturationVaporPressure(dewPointC) / saturationVaporPressure(tempC)
	if math.IsNaN(rh) {
		return 0
	}
	return math.Min(100, math.Max(0, rh))
}

// saturationVaporPressure returns es(t) in hPa for a temperature in °C.
func saturationVaporPressure(tempC float64) float64 {
	return 6.112 * math.Exp(magnusA*tempC/(tempC+magnusB))
}

// WindSpeedKmh converts a squared wind speed (m/s)² — typically Umax²+Vmax² —
// to km/h. Returns ok=false for negative or NaN input instead of producing
// an undefined square root.
func WindSpeedKmh(speedSq float64) (float64, bool) {
	if speedSq < 0 || math.IsNaN(speedSq) {
		return 0, false
	}
	return math.Sqrt(speedSq) * 3.6, true
}

// ClockTime is a meteogram time offset decoded into the local zone.
type ClockTime struct {
	Hour   int
	Minute int
	// Date is the calendar day the offset lands on after the UTC-3
	// conversion: the day before the reference date when the offset wraps
	// below midnight, the day after when it passes 24h.
	Date time.Time
}

// Formatted renders the clock time as "HH:MM".
func (c ClockTime) Formatted() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DecodeTimeOfDay converts seconds since midnight UTC-0 into local wall-clock
// time, adjusting the reference day when the 3-hour shift crosses midnight
// in either direction.
func DecodeTimeOfDay(seconds int, reference time.Time) ClockTime {
	local := seconds - utcOffsetSeconds
	date := reference

	switch {
	case local < 0:
		local += secondsPerDay
		date = reference.AddDate(0, 0, -1)
	case local >= secondsPerDay:
		local -= secondsPerDay
		date = reference.AddDate(0, 0, 1)
	}

	return ClockTime{
		Hour:   local / 3600,
		Minute: (local % 3600) / 60,
		Date:   date,
	}
}

// AlertTime decodes an alert's stored offset against today's date from the
// package clock.
func AlertTime(seconds int) ClockTime {
	return DecodeTimeOfDay(seconds, clock.Now())
}

// Today returns the current date from the package clock. Export records use
// it as the generation date.
func Today() time.Time {
	return clock.Now()
}
