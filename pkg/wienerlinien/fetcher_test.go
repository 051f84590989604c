package wienerlinien

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonitorServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func TestFetchParsesMonitor(t *testing.T) {
	fixture, err := os.ReadFile("testdata/monitor_4210.json")
	require.NoError(t, err)

	var gotRBL, gotUserAgent string
	server := newMonitorServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotRBL = r.URL.Query().Get("rbl")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	})

	fetcher := NewFetcher("4210", WithBaseURL(server.URL+"/monitor?rbl=%s"), WithUserAgent("test-agent"))
	response, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "4210", gotRBL)
	assert.Equal(t, "test-agent", gotUserAgent)
	assert.Equal(t, "4210", fetcher.StopID())

	require.Len(t, response.Data.Monitors, 1)
	monitor := response.Data.Monitors[0]
	assert.Equal(t, "Westbahnhof", monitor.LocationStop.Properties.Title)
	assert.Equal(t, Identifier("4210"), monitor.LocationStop.Properties.Attributes.RBL)

	require.Len(t, monitor.Lines, 1)
	line := monitor.Lines[0]
	assert.Equal(t, Identifier("42"), line.LineID)
	assert.Equal(t, "U3", line.Name)
	assert.Equal(t, "Ottakring", line.Towards)
	require.Len(t, line.Departures.Departure, 2)
	assert.Equal(t, "2023-10-01T18:32:00.000+0200", line.Departures.Departure[0].DepartureTime.TimeReal)
	assert.Equal(t, 12, line.Departures.Departure[1].DepartureTime.Countdown)
	assert.Empty(t, line.Departures.Departure[1].DepartureTime.TimeReal)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": {"monitors": [`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMonitorServer(t, tt.handler)

			fetcher := NewFetcher("4210", WithBaseURL(server.URL+"/?rbl=%s"), WithTimeout(100*time.Millisecond))
			response, err := fetcher.Fetch(context.Background())

			assert.Error(t, err)
			assert.Nil(t, response)
		})
	}
}

func TestFetchMessageCodes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "database unavailable",
			body:    `{"data": {}, "message": {"value": "DB nicht verfuegbar", "messageCode": 311}}`,
			wantErr: true,
		},
		{
			name:    "rate limited",
			body:    `{"data": {}, "message": {"value": "Rate limit", "messageCode": 316}}`,
			wantErr: true,
		},
		{
			name: "ok",
			body: `{"data": {"monitors": []}, "message": {"value": "OK", "messageCode": 1}}`,
		},
		{
			name: "no message",
			body: `{"data": {"monitors": []}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMonitorServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			response, err := NewFetcher("4210", WithBaseURL(server.URL+"/?rbl=%s")).Fetch(context.Background())

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMonitorMessage)
				assert.Nil(t, response)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, response)
			}
		})
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL + "/?rbl=%s"
	server.Close()

	response, err := NewFetcher("1", WithBaseURL(baseURL)).Fetch(context.Background())

	assert.Error(t, err)
	assert.Nil(t, response)
}

func TestLineAcceptsLinienID(t *testing.T) {
	var line Line
	err := json.Unmarshal([]byte(`{"name": "13A", "linienId": 130, "towards": "Hauptbahnhof"}`), &line)
	require.NoError(t, err)

	assert.Equal(t, Identifier("130"), line.LineID)
	assert.Equal(t, "13A", line.Name)
	assert.Equal(t, "Hauptbahnhof", line.Towards)
}

func TestLinePrefersLineID(t *testing.T) {
	var line Line
	err := json.Unmarshal([]byte(`{"lineId": "301", "linienId": 999}`), &line)
	require.NoError(t, err)

	assert.Equal(t, Identifier("301"), line.LineID)
}

func TestIdentifierDecoding(t *testing.T) {
	var attributes LocationAttributes

	require.NoError(t, json.Unmarshal([]byte(`{"rbl": 147}`), &attributes))
	assert.Equal(t, "147", attributes.RBL.String())

	require.NoError(t, json.Unmarshal([]byte(`{"rbl": "4210"}`), &attributes))
	assert.Equal(t, "4210", attributes.RBL.String())

	require.NoError(t, json.Unmarshal([]byte(`{"rbl": null}`), &attributes))
	assert.Equal(t, "", attributes.RBL.String())

	assert.Error(t, json.Unmarshal([]byte(`{"rbl": true}`), &attributes))
}
