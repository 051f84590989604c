package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/travigo/wienerlinien/pkg/metrics"
	"github.com/travigo/wienerlinien/pkg/monitor"
	"github.com/travigo/wienerlinien/pkg/sensor"
)

// Monitor is a refreshable sensor entity, satisfied by *monitor.LineMonitor
type Monitor interface {
	sensor.Entity
	Refresh(ctx context.Context) monitor.RefreshResult
}

// LineTracker drives a single monitor on a fixed refresh rate. Its ticks never
// overlap.
type LineTracker struct {
	Monitor     Monitor
	RefreshRate time.Duration

	Sink    sensor.Sink
	Metrics *metrics.Collector
	Logger  zerolog.Logger

	Now func() time.Time
}

func (l *LineTracker) Run(ctx context.Context) error {
	l.Logger.Info().
		Str("id", l.Monitor.UniqueID()).
		Dur("refresh", l.RefreshRate).
		Msg("Registering new line tracker")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		startTime := time.Now()

		l.Tick(ctx)

		waitTime := l.RefreshRate - time.Since(startTime)
		if waitTime < 0 {
			waitTime = 0
		}
		timer.Reset(waitTime)
	}
}

// Tick refreshes the monitor once and publishes the new snapshot if the
// state changed.
func (l *LineTracker) Tick(ctx context.Context) monitor.RefreshResult {
	startTime := time.Now()

	result := l.Monitor.Refresh(ctx)

	l.Metrics.ObserveRefresh(result.Outcome.String(), result.ReasonLabel(), time.Since(startTime))

	if result.Outcome != monitor.OutcomeUpdated {
		l.Logger.Debug().
			Str("id", l.Monitor.UniqueID()).
			Str("reason", result.ReasonLabel()).
			AnErr("cause", result.Reason).
			Msg("Line monitor not updated")
		return result
	}

	l.publish(ctx)

	return result
}

func (l *LineTracker) publish(ctx context.Context) {
	if l.Sink == nil {
		return
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	snapshot := sensor.FromEntity(l.Monitor, now())
	if err := l.Sink.Publish(ctx, snapshot); err != nil {
		l.Metrics.PublishErrorInc()
		l.Logger.Error().Err(err).Str("id", snapshot.UniqueID).Msg("Failed to publish sensor")
		return
	}

	l.Logger.Debug().
		Str("id", snapshot.UniqueID).
		Str("state", snapshot.State).
		Msg("Published sensor")
}
