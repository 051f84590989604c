package wienerlinien

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://www.wienerlinien.at/ogd_realtime/monitor?rbl=%s"
const DefaultTimeout = 10 * time.Second
const DefaultUserAgent = "wienerlinien-monitor/1.0"

var ErrMonitorMessage = errors.New("monitor API reported an error")

// Fetcher retrieves the monitor payload for a single stop. One Fetcher is
// shared by every line monitor at that stop.
type Fetcher struct {
	stopID    string
	baseURL   string
	userAgent string
	timeout   time.Duration

	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Fetcher)

// WithBaseURL sets the endpoint template, it must contain a single %s for the stop identifier
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func NewFetcher(stopID string, opts ...Option) *Fetcher {
	f := &Fetcher{
		stopID:     stopID,
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.logger = f.logger.With().Str("stop", stopID).Logger()

	return f
}

func (f *Fetcher) StopID() string {
	return f.stopID
}

func (f *Fetcher) URL() string {
	return fmt.Sprintf(f.baseURL, f.stopID)
}

// Fetch performs one bounded GET against the monitor endpoint. Any failure
// returns a nil payload and the cause, including a response whose message
// carries a code other than MessageCodeOK. A missing message is accepted.
func (f *Fetcher) Fetch(ctx context.Context) (*MonitorResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	requestURL := f.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build monitor request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monitor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read monitor response body: %w", err)
	}

	var monitorResponse MonitorResponse
	if err := json.Unmarshal(jsonBytes, &monitorResponse); err != nil {
		return nil, fmt.Errorf("failed to decode monitor JSON: %w", err)
	}

	if code := monitorResponse.Message.MessageCode; code != 0 && code != MessageCodeOK {
		return nil, fmt.Errorf("%w: code %d %q", ErrMonitorMessage, code, monitorResponse.Message.Value)
	}

	f.logger.Debug().
		Int("monitors", len(monitorResponse.Data.Monitors)).
		Str("servertime", monitorResponse.Message.ServerTime).
		Msg("Fetched stop monitor")

	return &monitorResponse, nil
}
