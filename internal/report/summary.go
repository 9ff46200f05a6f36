// Package report renders a run's alert store: a human-readable summary for
// the logs and an export payload for the delivery gateway.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meteoalerta/meteo-alert-service/internal/domain"
)

const dateLayout = "02/01/2006"

// Summary renders the alert store as a human-readable report. Cities are
// listed alphabetically and kinds in their fixed order, so identical stores
// always render identically. The format is meant for log inspection, not as
// a wire contract.
func Summary(store domain.AlertStore) string {
	if len(store) == 0 {
		return "no alerts generated"
	}

	var b strings.Builder
	b.WriteString("=== ALERT SUMMARY ===\n")

	for _, city := range sortedCities(store) {
		fmt.Fprintf(&b, "\nCity: %s\n", city)

		for _, kind := range domain.Kinds() {
			rec, ok := store[city][kind]
			if !ok {
				continue
			}
			writeRecord(&b, rec)
		}
	}

	return b.String()
}

func writeRecord(b *strings.Builder, rec domain.AlertRecord) {
	switch rec.Kind {
	case domain.KindHighTemperature, domain.KindLowTemperature:
		fmt.Fprintf(b, "  - %s: %.1f%s (%.1fK)\n", title(rec.Kind), rec.Value, rec.Unit, rec.ValueKelvin)
		fmt.Fprintf(b, "    Threshold: %.1f%s\n", rec.Threshold, rec.Unit)
	default:
		fmt.Fprintf(b, "  - %s: %.1f%s (threshold: %.1f%s)\n", title(rec.Kind), rec.Value, rec.Unit, rec.Threshold, rec.Unit)
	}

	fmt.Fprintf(b, "    Difference: %.1f%s\n", rec.Difference, rec.Unit)

	if rec.Kind == domain.KindLowHumidity {
		fmt.Fprintf(b, "    Average temperature (Tave): %.1f°C\n", rec.AveTempC)
		fmt.Fprintf(b, "    Dew point (TDave): %.1f°C\n", rec.DewPointC)
	}

	ct := domain.AlertTime(rec.Seconds)
	fmt.Fprintf(b, "    Seconds: %d\n", rec.Seconds)
	fmt.Fprintf(b, "    Date: %s\n", ct.Date.Format(dateLayout))
	fmt.Fprintf(b, "    Time: %s\n", ct.Formatted())
}

// title upper-cases the first letter of a kind label for display.
func title(kind domain.AlertKind) string {
	label := kind.Label()
	return strings.ToUpper(label[:1]) + label[1:]
}

func sortedCities(store domain.AlertStore) []string {
	cities := store.Cities()
	sort.Strings(cities)
	return cities
}
