package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/wienerlinien/pkg/metrics"
	"github.com/travigo/wienerlinien/pkg/monitor"
	"github.com/travigo/wienerlinien/pkg/sensor"
)

type TrackerManager struct {
	Stops       []string
	Variants    []monitor.Variant
	RefreshRate time.Duration

	NewFetcher monitor.FetcherFactory

	Sink    sensor.Sink
	Metrics *metrics.Collector
	Logger  zerolog.Logger

	// SetupBackOff paces setup retries while stops are not ready. Defaults
	// to an unbounded exponential backoff.
	SetupBackOff backoff.BackOff
}

// Setup creates the line monitors, retrying for as long as setup reports
// monitor.ErrNotReady. Any other error ends setup immediately.
func (t *TrackerManager) Setup(ctx context.Context) ([]*monitor.LineMonitor, error) {
	b := t.SetupBackOff
	if b == nil {
		exponential := backoff.NewExponentialBackOff()
		exponential.InitialInterval = 5 * time.Second
		exponential.MaxInterval = 5 * time.Minute
		exponential.MaxElapsedTime = 0
		b = exponential
	}

	var monitors []*monitor.LineMonitor

	operation := func() error {
		t.Metrics.SetupAttemptInc()

		var err error
		monitors, err = monitor.Setup(ctx, t.Logger, t.NewFetcher, t.Stops, t.Variants)
		if err != nil && !errors.Is(err, monitor.ErrNotReady) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		t.Logger.Warn().Err(err).Dur("retry", wait).Msg("Platform not ready, retrying setup")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}

	return monitors, nil
}

// Run sets up the monitors, registers their initial sensors and then tracks
// every monitor in its own goroutine until ctx is cancelled.
func (t *TrackerManager) Run(ctx context.Context) error {
	t.Logger.Info().
		Strs("stops", t.Stops).
		Dur("refresh", t.RefreshRate).
		Msg("Starting Wiener Linien departure tracker")

	monitors, err := t.Setup(ctx)
	if err != nil {
		return err
	}

	t.Metrics.SetMonitors(len(monitors))
	t.Logger.Info().Int("monitors", len(monitors)).Msg("Registered line monitors")

	now := time.Now()
	for _, lineMonitor := range monitors {
		if t.Sink == nil {
			break
		}

		if err := t.Sink.Publish(ctx, sensor.FromEntity(lineMonitor, now)); err != nil {
			t.Metrics.PublishErrorInc()
			t.Logger.Error().Err(err).Str("id", lineMonitor.UniqueID()).Msg("Failed to register sensor")
		}
	}

	p := pool.New().WithContext(ctx)

	for _, lineMonitor := range monitors {
		lineTracker := &LineTracker{
			Monitor:     lineMonitor,
			RefreshRate: t.RefreshRate,
			Sink:        t.Sink,
			Metrics:     t.Metrics,
			Logger:      t.Logger,
		}

		p.Go(func(ctx context.Context) error {
			return lineTracker.Run(ctx)
		})
	}

	return p.Wait()
}
