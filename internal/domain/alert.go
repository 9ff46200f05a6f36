package domain

// AlertKind is the closed set of alert categories the engine can emit.
type AlertKind int

const (
	KindHighTemperature AlertKind = iota
	KindLowTemperature
	KindLowHumidity
	KindHighWind
	KindHeavyRain
)

// Kinds lists every alert kind in the fixed order used by summaries.
func Kinds() []AlertKind {
	return []AlertKind{
		KindHighTemperature,
		KindLowTemperature,
		KindLowHumidity,
		KindHighWind,
		KindHeavyRain,
	}
}

// Label is the human-readable kind name. Export matching resolves events by
// case-insensitive substring of this label inside the event display name, so
// labels are part of the vocabulary contract with the delivery gateway.
func (k AlertKind) Label() string {
	switch k {
	case KindHighTemperature:
		return "high temperature"
	case KindLowTemperature:
		return "low temperature"
	case KindLowHumidity:
		return "low humidity"
	case KindHighWind:
		return "strong wind"
	case KindHeavyRain:
		return "heavy rain"
	default:
		return "unknown"
	}
}

func (k AlertKind) String() string { return k.Label() }

// Measurement units attached to alert records.
const (
	UnitCelsius = "°C"
	UnitPercent = "%"
	UnitKmh     = "km/h"
	UnitMm      = "mm"
)

// AlertRecord is the single reduced alert for one city and one kind: the
// extremal value, the threshold it was judged against, and the sample that
// produced it. Difference is always value minus threshold, so its sign tells
// which side of the threshold the value landed on.
type AlertRecord struct {
	Kind       AlertKind `json:"kind"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Difference float64   `json:"difference"`
	Unit       string    `json:"unit"`
	Seconds    int       `json:"seconds"`
	Polygon    string    `json:"polygon"`

	// Kind-specific extras.
	ValueKelvin float64 `json:"value_kelvin,omitempty"` // temperature families: source value in Kelvin
	AveTempC    float64 `json:"tave_c,omitempty"`       // low humidity: average temperature, °C
	DewPointC   float64 `json:"tdave_c,omitempty"`      // low humidity: average dew point, °C
}

// AlertStore holds every alert of one derivation run, keyed by display city
// name and then by kind. It starts empty, is populated by merging whole
// family results, and is never shared across runs.
type AlertStore map[string]map[AlertKind]AlertRecord

// MergeFamily folds one family's per-city records into the store. Families
// write disjoint kind keys, so merging cannot conflict; re-merging an
// identical family result is idempotent.
func (s AlertStore) MergeFamily(records map[string]AlertRecord) {
	for city, rec := range records {
		if s[city] == nil {
			s[city] = make(map[AlertKind]AlertRecord)
		}
		s[city][rec.Kind] = rec
	}
}

// Cities returns the city names present in the store, unordered.
func (s AlertStore) Cities() []string {
	cities := make([]string, 0, len(s))
	for city := range s {
		cities = append(cities, city)
	}
	return cities
}

// Count returns the total number of alert records in the store.
func (s AlertStore) Count() int {
	n := 0
	for _, kinds := range s {
		n += len(kinds)
	}
	return n
}
