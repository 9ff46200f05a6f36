// Package source loads parsed meteogram datasets from disk. The upstream
// parser service writes one JSON file per model run; this package discovers
// the newest one and decodes it into the domain's polygon series.
package source

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/meteoalerta/meteo-alert-service/internal/domain"
)

const (
	filePrefix = "HST"
	fileSuffix = "-Meteogram.json"
)

// FileSource reads parsed meteogram JSON datasets. When an explicit path is
// set it is used as-is; otherwise the newest matching file in the directory
// wins.
type FileSource struct {
	dir      string
	explicit string
	logger   *slog.Logger
}

// NewFileSource creates a dataset source. explicit may be empty.
func NewFileSource(dir, explicit string, logger *slog.Logger) *FileSource {
	return &FileSource{dir: dir, explicit: explicit, logger: logger}
}

// Load reads and decodes the current dataset.
func (s *FileSource) Load() (domain.PolygonSeries, error) {
	path := s.explicit
	if path == "" {
		latest, err := s.latestFile()
		if err != nil {
			return nil, err
		}
		path = latest
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meteogram: %w", err)
	}

	series, err := decodeSeries(data)
	if err != nil {
		return nil, fmt.Errorf("decode meteogram %s: %w", filepath.Base(path), err)
	}

	s.logger.Info("meteogram dataset loaded", "file", filepath.Base(path), "polygons", len(series))
	return series, nil
}

// latestFile returns the newest HST*-Meteogram.json in the source directory
// by modification time.
func (s *FileSource) latestFile() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read meteogram dir: %w", err)
	}

	var newest string
	var newestMod int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = filepath.Join(s.dir, name)
			newestMod = mod
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no meteogram file found in %s", s.dir)
	}
	return newest, nil
}

// decodeSeries converts the JSON dataset (string-keyed time offsets) into
// the integer-keyed domain representation.
func decodeSeries(data []byte) (domain.PolygonSeries, error) {
	var raw map[string]map[string]domain.Measurements
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	series := make(domain.PolygonSeries, len(raw))
	for polygonID, rows := range raw {
		ts := make(domain.TimeSeries, len(rows))
		for key, values := range rows {
			seconds, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("polygon %s: bad time key %q", polygonID, key)
			}
			ts[seconds] = values
		}
		series[polygonID] = ts
	}
	return series, nil
}
