// Package pipeline orchestrates one derivation cycle: load the newest
// meteogram dataset, derive per-city alerts, render the summary, and hand
// the export records to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/meteoalerta/meteo-alert-service/internal/domain"
	"github.com/meteoalerta/meteo-alert-service/internal/observability"
	"github.com/meteoalerta/meteo-alert-service/internal/report"
)

// SeriesSource loads the current meteogram dataset.
type SeriesSource interface {
	Load() (domain.PolygonSeries, error)
}

// Deriver turns a dataset into the run's alert store.
type Deriver interface {
	GenerateAll(series domain.PolygonSeries) domain.AlertStore
}

// Gateway is the alert platform API used for vocabularies and submission.
type Gateway interface {
	Login(ctx context.Context) error
	Events(ctx context.Context) ([]report.Event, error)
	Cities(ctx context.Context) ([]report.City, error)
	SubmitAlerts(ctx context.Context, records []report.ExportRecord) error
	StartProcessing(ctx context.Context) error
}

// AlertSink receives the run's export records, e.g. a Kafka topic.
type AlertSink interface {
	Publish(ctx context.Context, runID string, records []report.ExportRecord) error
}

// runInfo describes the most recent completed run.
type runInfo struct {
	id          string
	completedAt time.Time
	alerts      int
}

// Pipeline runs the derivation cycle once or on an interval. gateway and
// sink are optional; a nil gateway switches the builder to identity
// vocabularies so sinks still receive readable records.
type Pipeline struct {
	source  SeriesSource
	engine  Deriver
	builder *report.Builder
	gateway Gateway
	sink    AlertSink
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	interval time.Duration
	runOnce  bool

	ready atomic.Bool
	mu    sync.Mutex
	last  runInfo
}

// Options carries the optional pieces of a Pipeline.
type Options struct {
	Gateway  Gateway
	Sink     AlertSink
	Interval time.Duration
	RunOnce  bool
	Clock    clockwork.Clock
}

// New creates a Pipeline.
func New(source SeriesSource, engine Deriver, builder *report.Builder, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:   source,
		engine:   engine,
		builder:  builder,
		gateway:  opts.Gateway,
		sink:     opts.Sink,
		logger:   logger,
		metrics:  metrics,
		clock:    opts.Clock,
		interval: opts.Interval,
		runOnce:  opts.RunOnce,
	}
}

// CheckReadiness returns nil once at least one derivation run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no derivation run has completed yet")
	}
	return nil
}

// LastRun reports the most recent completed run. ok is false before the
// first completion.
func (p *Pipeline) LastRun() (string, time.Time, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last.id == "" {
		return "", time.Time{}, 0, false
	}
	return p.last.id, p.last.completedAt, p.last.alerts, true
}

// Run executes derivation cycles until the context is cancelled. In run-once
// mode it executes a single cycle and returns its error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "run_once", p.runOnce)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		if err := p.RunCycle(ctx); err != nil {
			p.logger.Error("derivation run failed", "error", err)
			if p.runOnce {
				return err
			}
		}
		if p.runOnce {
			return nil
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-p.clock.After(p.interval):
		}
	}
}

// RunCycle executes one load-derive-export cycle.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	start := p.clock.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	series, err := p.source.Load()
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	store := p.engine.GenerateAll(series)
	p.observeStore(store)

	logger.Info("derivation complete", "cities", len(store), "alerts", store.Count())
	logger.Info("alert summary", "summary", "\n"+report.Summary(store))

	if store.Count() == 0 {
		p.metrics.RunsTotal.WithLabelValues("empty").Inc()
		p.finishRun(runID, 0, start)
		return nil
	}

	records, err := p.export(ctx, logger, store)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	if p.sink != nil && len(records) > 0 {
		if err := p.sink.Publish(ctx, runID, records); err != nil {
			p.metrics.RunsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.finishRun(runID, store.Count(), start)
	return nil
}

// export resolves vocabularies, builds the export records, and submits them
// to the gateway when one is configured.
func (p *Pipeline) export(ctx context.Context, logger *slog.Logger, store domain.AlertStore) ([]report.ExportRecord, error) {
	if p.gateway == nil {
		events, cities := identityVocabularies(store)
		return p.builder.Build(store, events, cities), nil
	}

	if err := p.gateway.Login(ctx); err != nil {
		return nil, err
	}
	events, err := p.gateway.Events(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := p.gateway.Cities(ctx)
	if err != nil {
		return nil, err
	}

	records := p.builder.Build(store, events, cities)
	if len(records) == 0 {
		logger.Warn("no alert matched the gateway vocabularies")
		return records, nil
	}

	if err := p.gateway.SubmitAlerts(ctx, records); err != nil {
		return nil, err
	}
	if err := p.gateway.StartProcessing(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// identityVocabularies builds pass-through vocabularies from the store, used
// in standalone mode when no gateway is configured. IDs equal display names.
func identityVocabularies(store domain.AlertStore) ([]report.Event, []report.City) {
	events := make([]report.Event, 0, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		events = append(events, report.Event{ID: kind.Label(), Name: kind.Label()})
	}
	cities := make([]report.City, 0, len(store))
	for _, city := range store.Cities() {
		cities = append(cities, report.City{ID: city, Name: city})
	}
	return events, cities
}

func (p *Pipeline) observeStore(store domain.AlertStore) {
	p.metrics.CitiesAlerted.Observe(float64(len(store)))
	for _, kinds := range store {
		for kind := range kinds {
			p.metrics.AlertsGenerated.WithLabelValues(kind.Label()).Inc()
		}
	}
}

func (p *Pipeline) finishRun(runID string, alerts int, start time.Time) {
	now := p.clock.Now()
	p.metrics.RunDuration.Observe(now.Sub(start).Seconds())
	p.metrics.LastRunUnix.Set(float64(now.Unix()))
	p.ready.Store(true)

	p.mu.Lock()
	p.last = runInfo{id: runID, completedAt: now, alerts: alerts}
	p.mu.Unlock()
}
