package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// FetcherFactory builds the fetcher shared by every monitor at a stop
type FetcherFactory func(stopID string) Fetcher

// Setup fetches each stop once and creates a monitor per discovered line and
// requested variant. If any stop cannot be fetched, or yields no monitor block
// with a line, the returned error wraps ErrNotReady and no monitors are
// returned.
func Setup(ctx context.Context, logger zerolog.Logger, newFetcher FetcherFactory, stops []string, variants []Variant) ([]*LineMonitor, error) {
	if len(variants) == 0 {
		return nil, errors.New("no variants requested")
	}

	var monitors []*LineMonitor

	for _, stopID := range stops {
		fetcher := newFetcher(stopID)

		response, err := fetcher.Fetch(ctx)
		if err == nil && response == nil {
			err = errors.New("empty payload")
		}
		if err != nil {
			return nil, fmt.Errorf("stop %s: %w", stopID, errors.Join(ErrNotReady, err))
		}

		stopMonitors := 0

		for _, block := range response.Data.Monitors {
			if len(block.Lines) == 0 {
				logger.Warn().
					Str("stop", stopID).
					Str("title", block.LocationStop.Properties.Title).
					Msg("Skipping monitor block without lines")
				continue
			}

			logger.Info().
				Str("stop", stopID).
				Str("rbl", block.LocationStop.Properties.Attributes.RBL.String()).
				Str("line", block.Lines[0].Name).
				Msg("Appending Wiener Linien monitor")

			for _, variant := range variants {
				lineMonitor, err := NewLineMonitor(fetcher, block, variant, logger)
				if err != nil {
					return nil, fmt.Errorf("stop %s: %w", stopID, err)
				}

				monitors = append(monitors, lineMonitor)
				stopMonitors++
			}
		}

		if stopMonitors == 0 {
			return nil, fmt.Errorf("stop %s: %w: no monitor blocks with lines", stopID, ErrNotReady)
		}
	}

	return monitors, nil
}
