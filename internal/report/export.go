package report

import (
	"log/slog"
	"strings"

	"github.com/meteoalerta/meteo-alert-service/internal/domain"
	"github.com/meteoalerta/meteo-alert-service/internal/observability"
)

// Event is a gateway vocabulary entry for an alert category.
type Event struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// City is a gateway vocabulary entry for a municipality.
type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExportRecord is one alert in the gateway submission format. Dates are
// ISO 8601 (YYYY-MM-DD) and Time is the decoded local HH:MM.
type ExportRecord struct {
	EventID        string  `json:"eventId"`
	CityID         string  `json:"cityId"`
	Value          float64 `json:"value"`
	ThresholdValue float64 `json:"thresholdValue"`
	Difference     float64 `json:"difference"`
	GenerationDate string  `json:"generationDate"`
	ReferenceDate  string  `json:"referenceDate"`
	Unit           string  `json:"unit"`
	Time           string  `json:"time"`
	SecondsOffset  int     `json:"secondsOffset"`
}

// CityMatcher resolves a display city name against the gateway's city
// vocabulary.
type CityMatcher interface {
	MatchCity(name string, cities []City) (City, bool)
}

// EventMatcher resolves an alert kind against the gateway's event
// vocabulary.
type EventMatcher interface {
	MatchEvent(kind domain.AlertKind, events []Event) (Event, bool)
}

// ExactCityMatcher matches city names case-insensitively and exactly. The
// first vocabulary entry wins.
type ExactCityMatcher struct{}

func (ExactCityMatcher) MatchCity(name string, cities []City) (City, bool) {
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return City{}, false
}

// LabelEventMatcher matches an event whose name contains the kind label,
// case-insensitively. The first vocabulary entry wins.
type LabelEventMatcher struct{}

func (LabelEventMatcher) MatchEvent(kind domain.AlertKind, events []Event) (Event, bool) {
	label := strings.ToLower(kind.Label())
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Name), label) {
			return e, true
		}
	}
	return Event{}, false
}

// Builder turns an alert store into export records using the gateway
// vocabularies. Alerts whose city or event cannot be resolved are skipped
// with a warning rather than failing the run.
type Builder struct {
	cities  CityMatcher
	events  EventMatcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBuilder creates a Builder. Nil matchers fall back to the default
// exact-city and label-substring matchers.
func NewBuilder(cities CityMatcher, events EventMatcher, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	if cities == nil {
		cities = ExactCityMatcher{}
	}
	if events == nil {
		events = LabelEventMatcher{}
	}
	return &Builder{cities: cities, events: events, logger: logger, metrics: metrics}
}

// Build produces export records for every resolvable alert in the store.
// Output order is deterministic: cities alphabetically, kinds in their
// fixed order.
func (b *Builder) Build(store domain.AlertStore, events []Event, cities []City) []ExportRecord {
	generation := domain.Today().Format("2006-01-02")
	records := make([]ExportRecord, 0, store.Count())

	for _, cityName := range sortedCities(store) {
		city, ok := b.cities.MatchCity(cityName, cities)
		if !ok {
			b.logger.Warn("city not in gateway vocabulary, skipping its alerts",
				"city", cityName, "alerts", len(store[cityName]))
			b.metrics.ExportSkipped.WithLabelValues("city").Add(float64(len(store[cityName])))
			continue
		}

		for _, kind := range domain.Kinds() {
			rec, ok := store[cityName][kind]
			if !ok {
				continue
			}

			event, ok := b.events.MatchEvent(kind, events)
			if !ok {
				b.logger.Warn("event not in gateway vocabulary, skipping alert",
					"city", cityName, "kind", kind.Label())
				b.metrics.ExportSkipped.WithLabelValues("event").Inc()
				continue
			}

			ct := domain.AlertTime(rec.Seconds)
			records = append(records, ExportRecord{
				EventID:        event.ID,
				CityID:         city.ID,
				Value:          rec.Value,
				ThresholdValue: rec.Threshold,
				Difference:     rec.Difference,
				GenerationDate: generation,
				ReferenceDate:  ct.Date.Format("2006-01-02"),
				Unit:           rec.Unit,
				Time:           ct.Formatted(),
				SecondsOffset:  rec.Seconds,
			})
			b.metrics.ExportRecords.Inc()
		}
	}

	return records
}
