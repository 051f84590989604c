package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/wienerlinien/pkg/wienerlinien"
)

func TestSetupCreatesMonitorsPerLineAndVariant(t *testing.T) {
	fetchers := map[string]*fakeFetcher{
		"100": {stopID: "100"},
		"200": {stopID: "200"},
	}
	fetchers["100"].push(payload(
		block("Stephansplatz", "100", line("1", "U1", "Leopoldau")),
		block("Stephansplatz", "100", line("3", "U3", "Simmering")),
		block("Stephansplatz", "100"),
	), nil)
	fetchers["200"].push(payload(
		block("Praterstern", "200", line("2", "U2", "Seestadt")),
	), nil)

	created := map[string]int{}
	factory := func(stopID string) Fetcher {
		created[stopID]++
		return fetchers[stopID]
	}

	monitors, err := Setup(context.Background(), zerolog.Nop(), factory, []string{"100", "200"}, []Variant{VariantNext, VariantFollowing})
	require.NoError(t, err)

	require.Len(t, monitors, 6)
	assert.Equal(t, map[string]int{"100": 1, "200": 1}, created)

	var names []string
	for _, m := range monitors {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{
		"Stephansplatz: U1 towards Leopoldau next departure",
		"Stephansplatz: U1 towards Leopoldau following departure",
		"Stephansplatz: U3 towards Simmering next departure",
		"Stephansplatz: U3 towards Simmering following departure",
		"Praterstern: U2 towards Seestadt next departure",
		"Praterstern: U2 towards Seestadt following departure",
	}, names)

	// monitors at one stop share the fetcher
	assert.Same(t, monitors[0].fetcher, monitors[3].fetcher)
	assert.Equal(t, "200", monitors[4].StopID())
}

func TestSetupNotReady(t *testing.T) {
	good := &fakeFetcher{stopID: "100"}
	good.push(payload(block("Stop", "100", line("1", "1", "A"))), nil)
	bad := &fakeFetcher{stopID: "200"}
	bad.push(nil, errors.New("connection refused"))

	factory := func(stopID string) Fetcher {
		if stopID == "100" {
			return good
		}
		return bad
	}

	monitors, err := Setup(context.Background(), zerolog.Nop(), factory, []string{"100", "200"}, []Variant{VariantNext})

	assert.Nil(t, monitors)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorContains(t, err, "connection refused")
	assert.ErrorContains(t, err, "stop 200")
}

func TestSetupNotReadyWithoutLines(t *testing.T) {
	tests := []struct {
		name     string
		response *wienerlinien.MonitorResponse
	}{
		{name: "no monitors", response: payload()},
		{name: "only empty blocks", response: payload(block("Stop", "200"), block("Stop", "200"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := &fakeFetcher{stopID: "100"}
			good.push(payload(block("Stop", "100", line("1", "1", "A"))), nil)
			empty := &fakeFetcher{stopID: "200"}
			empty.push(tt.response, nil)

			factory := func(stopID string) Fetcher {
				if stopID == "100" {
					return good
				}
				return empty
			}

			monitors, err := Setup(context.Background(), zerolog.Nop(), factory, []string{"100", "200"}, []Variant{VariantNext})

			assert.Nil(t, monitors)
			assert.ErrorIs(t, err, ErrNotReady)
			assert.ErrorContains(t, err, "stop 200")
		})
	}
}

func TestSetupRequiresVariants(t *testing.T) {
	_, err := Setup(context.Background(), zerolog.Nop(), func(string) Fetcher { return &fakeFetcher{} }, []string{"1"}, nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotReady))
}

func TestSetupThenRefreshThroughSharedFetcher(t *testing.T) {
	b := block("Stop", "1", line("9", "9", "A", departure(1, "2023-10-01T07:01:00.000+0200", "")))
	fetcher := &fakeFetcher{stopID: "1"}
	fetcher.push(payload(b), nil)

	monitors, err := Setup(context.Background(), zerolog.Nop(), func(string) Fetcher { return fetcher }, []string{"1"}, []Variant{VariantNext})
	require.NoError(t, err)
	require.Len(t, monitors, 1)

	var _ Fetcher = (*wienerlinien.Fetcher)(nil)

	result := monitors[0].Refresh(context.Background())
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.Equal(t, 2, fetcher.calls)
}
