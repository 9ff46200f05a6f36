// Command genmeteo generates a deterministic mock meteogram dataset for
// local runs and test fixtures. It writes the same HST JSON layout the
// upstream parser service produces, using the real domain field names so
// the output exercises every scan family.
//
// Usage:
//
//	go run ./cmd/genmeteo \
//	  -registry config.csv \
//	  -out tmp_files
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/meteoalerta/meteo-alert-service/internal/domain"
	"github.com/meteoalerta/meteo-alert-service/internal/registry"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

const (
	stepSeconds = 3600
	daySeconds  = 86400
	randomSeed  = 42
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	registryPath := flag.String("registry", "", "polygon registry CSV")
	outDir := flag.String("out", "", "output directory for the dataset")
	flag.Parse()

	if *registryPath == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -registry, -out")
	}

	reg, err := registry.LoadCSV(*registryPath)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(randomSeed))
	dataset := make(map[string]map[string]domain.Measurements)
	for _, polygonID := range reg.Polygons() {
		dataset[polygonID] = generateSeries(rng)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("HST%s00-Meteogram.json", baseDate.Format("2006010215"))
	path := filepath.Join(*outDir, name)

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	fmt.Printf("wrote %s: %d polygons, %d samples each\n", path, len(dataset), daySeconds/stepSeconds)
	return nil
}

// generateSeries produces one polygon's day of hourly samples. Temperatures
// follow a sine over the day so the extrema land at plausible hours; winds
// and dew point get bounded jitter so some polygons cross the default
// thresholds and some do not.
func generateSeries(rng *rand.Rand) map[string]domain.Measurements {
	series := make(map[string]domain.Measurements)

	// Daily midpoint around 20-30 °C with a 5-9 K swing.
	midK := 293.15 + rng.Float64()*10
	swing := 5 + rng.Float64()*4
	windBase := 1.5 + rng.Float64()*2.5
	dewDrop := 5 + rng.Float64()*15

	for sec := 0; sec < daySeconds; sec += stepSeconds {
		phase := 2 * math.Pi * float64(sec) / daySeconds
		// Coldest near 05:00 local, warmest near 17:00.
		tempK := midK - swing*math.Cos(phase-math.Pi/4)

		u := windBase + rng.Float64()*2
		v := windBase + rng.Float64()*2

		series[fmt.Sprintf("%d", sec)] = domain.Measurements{
			domain.FieldTmax:    tempK + 0.5,
			domain.FieldTmin:    tempK - 0.5,
			domain.FieldTave:    tempK,
			domain.FieldTDave:   tempK - dewDrop,
			domain.FieldUmax:    u,
			domain.FieldVmax:    v,
			domain.FieldPrecMax: math.Max(0, rng.Float64()*20-10),
		}
	}

	return series
}
