package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/travigo/wienerlinien/pkg/wienerlinien"
	"golang.org/x/exp/slices"
)

const (
	Icon        = "mdi:bus"
	DeviceClass = "timestamp"
)

// Fetcher is the source of stop payloads for a line monitor
type Fetcher interface {
	StopID() string
	Fetch(ctx context.Context) (*wienerlinien.MonitorResponse, error)
}

// LineMonitor tracks one departure of one line at one stop. The line is
// relocated on every refresh by its identifier, looking only at the first
// line entry of each monitor block.
//
// Refresh calls for the same monitor must not overlap; accessors are safe to
// call from any goroutine.
type LineMonitor struct {
	fetcher Fetcher
	variant Variant

	lineID   wienerlinien.Identifier
	identity string
	uniqueID string

	logger zerolog.Logger

	mu    sync.RWMutex
	state state
}

func NewLineMonitor(fetcher Fetcher, block wienerlinien.Monitor, variant Variant, logger zerolog.Logger) (*LineMonitor, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("invalid variant %q", variant)
	}
	if len(block.Lines) == 0 {
		return nil, errors.New("monitor block has no lines")
	}

	line := block.Lines[0]
	properties := block.LocationStop.Properties

	m := &LineMonitor{
		fetcher:  fetcher,
		variant:  variant,
		lineID:   line.LineID,
		identity: fmt.Sprintf("%s: %s towards %s", properties.Title, line.Name, line.Towards),
		uniqueID: fmt.Sprintf("%s_%s_%s_%s", line.LineID, properties.Attributes.RBL, line.Direction, variant),
	}

	m.logger = logger.With().
		Str("stop", fetcher.StopID()).
		Str("lineid", line.LineID.String()).
		Str("variant", string(variant)).
		Logger()

	return m, nil
}

// Refresh fetches the stop again and, if this monitor's line and departure are
// present, replaces the cached state. On any other outcome the prior state is
// left untouched. An empty timeReal or timePlanned counts as absent.
func (m *LineMonitor) Refresh(ctx context.Context) RefreshResult {
	response, err := m.fetcher.Fetch(ctx)
	if err == nil && response == nil {
		err = errors.New("empty payload")
	}
	if err != nil {
		m.logger.Debug().Err(err).Msg("Could not get new state")
		return noUpdate(fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	monitors := response.Data.Monitors
	index := slices.IndexFunc(monitors, func(block wienerlinien.Monitor) bool {
		return len(block.Lines) > 0 && block.Lines[0].LineID == m.lineID
	})
	if index < 0 {
		m.logger.Debug().Int("monitors", len(monitors)).Msg("Line not present in payload")
		return noUpdate(ErrLineNotFound)
	}

	line := monitors[index].Lines[0]
	departureList := line.Departures.Departure
	departureIndex := m.variant.Index()

	if len(departureList) <= departureIndex {
		m.logger.Debug().Int("departures", len(departureList)).Msg("Not enough departures for variant")
		return noUpdate(fmt.Errorf("%w: have %d, need index %d", ErrDepartureMissing, len(departureList), departureIndex))
	}

	departure := departureList[departureIndex]

	attributes := &Attributes{
		Destination: line.Towards,
		Platform:    line.Platform,
		Direction:   line.Direction,
		Name:        line.Name,
		Countdown:   departure.DepartureTime.Countdown,
	}
	if len(departureList) > departureIndex+1 {
		following := departureList[departureIndex+1].DepartureTime.Countdown
		attributes.CountdownFollowing = &following
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	timestamp := m.state.timestamp
	if departure.DepartureTime.TimeReal != "" {
		timestamp = departure.DepartureTime.TimeReal
	} else if departure.DepartureTime.TimePlanned != "" {
		timestamp = departure.DepartureTime.TimePlanned
	}

	m.state = state{
		timestamp:  timestamp,
		attributes: attributes,
	}

	m.logger.Debug().Str("timestamp", timestamp).Int("countdown", attributes.Countdown).Msg("Updated line state")

	return updated()
}

func (m *LineMonitor) Name() string {
	return m.variant.displayName(m.identity)
}

// State is the formatted departure timestamp, or StateUnknown before any was seen
func (m *LineMonitor) State() string {
	timestamp, ok := m.Timestamp()
	if !ok {
		return StateUnknown
	}

	return FormatTimestamp(timestamp)
}

// Timestamp is the raw cached departure timestamp
func (m *LineMonitor) Timestamp() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.timestamp, m.state.timestamp != ""
}

func (m *LineMonitor) Attributes() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.attributes.Map()
}

func (m *LineMonitor) Icon() string {
	return Icon
}

func (m *LineMonitor) DeviceClass() string {
	return DeviceClass
}

func (m *LineMonitor) UniqueID() string {
	return m.uniqueID
}

func (m *LineMonitor) StopID() string {
	return m.fetcher.StopID()
}

func (m *LineMonitor) LineID() string {
	return m.lineID.String()
}

func (m *LineMonitor) Variant() string {
	return string(m.variant)
}
