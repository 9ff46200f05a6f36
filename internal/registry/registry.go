// Package registry resolves internal polygon identifiers to display city
// names from the polygon configuration CSV.
package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVRegistry implements the engine's registry contract backed by a CSV file
// with rows of "polygon_id,display_name". Extra columns are ignored. A row
// with an empty display name registers the polygon but leaves it
// unresolvable, so it never produces alerts.
type CSVRegistry struct {
	order []string
	names map[string]string
}

// LoadCSV reads the polygon registry from path. The polygon iteration order
// is the file's row order, which keeps scan output deterministic.
func LoadCSV(path string) (*CSVRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may carry trailing config columns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	reg := &CSVRegistry{names: make(map[string]string)}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		polygonID := strings.TrimSpace(row[0])
		if polygonID == "" {
			continue
		}
		// Tolerate an optional header row.
		if i == 0 && strings.EqualFold(polygonID, "polygon_id") {
			continue
		}

		displayName := ""
		if len(row) > 1 {
			displayName = strings.TrimSpace(row[1])
		}

		if _, seen := reg.names[polygonID]; !seen {
			reg.order = append(reg.order, polygonID)
		}
		reg.names[polygonID] = displayName
	}

	if len(reg.order) == 0 {
		return nil, fmt.Errorf("registry %s has no polygon rows", path)
	}

	return reg, nil
}

// Polygons lists the registered polygon identifiers in file order.
func (r *CSVRegistry) Polygons() []string {
	return r.order
}

// DisplayName resolves a polygon identifier to its city name. Polygons
// registered without a name resolve as absent.
func (r *CSVRegistry) DisplayName(polygonID string) (string, bool) {
	name, ok := r.names[polygonID]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
