package wienerlinien

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identifier is an upstream code that the API emits either as a JSON number
// or as a string (rbl, lineId). It is always held in string form.
type Identifier string

func (i *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Identifier(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*i = Identifier(n.String())

	return nil
}

func (i Identifier) String() string {
	return string(i)
}

// MonitorResponse is the body returned by ogd_realtime/monitor for one stop
type MonitorResponse struct {
	Data    MonitorData `json:"data"`
	Message Message     `json:"message"`
}

type MonitorData struct {
	Monitors []Monitor `json:"monitors"`
}

// MessageCodeOK is the only messageCode of a usable response. The API reports
// its own failures (database down, rate limited) as HTTP 200 with another code.
const MessageCodeOK = 1

type Message struct {
	Value       string `json:"value"`
	MessageCode int    `json:"messageCode"`
	ServerTime  string `json:"serverTime"`
}

// Monitor is one physical stop or platform. Only Lines[0] is ever consulted by
// the line monitors, the API places a single line per monitor block.
type Monitor struct {
	LocationStop LocationStop `json:"locationStop"`
	Lines        []Line       `json:"lines"`
}

type LocationStop struct {
	Type       string             `json:"type"`
	Properties LocationProperties `json:"properties"`
}

type LocationProperties struct {
	Name         string             `json:"name"`
	Title        string             `json:"title"`
	Municipality string             `json:"municipality"`
	Type         string             `json:"type"`
	Attributes   LocationAttributes `json:"attributes"`
}

type LocationAttributes struct {
	RBL Identifier `json:"rbl"`
}

type Line struct {
	LineID Identifier `json:"lineId"`

	Name        string `json:"name"`
	Towards     string `json:"towards"`
	Direction   string `json:"direction"`
	Platform    string `json:"platform"`
	RichtungsID string `json:"richtungsId"`
	Type        string `json:"type"`

	BarrierFree       bool `json:"barrierFree"`
	RealtimeSupported bool `json:"realtimeSupported"`
	TrafficJam        bool `json:"trafficjam"`

	Departures Departures `json:"departures"`
}

// UnmarshalJSON accepts the older linienId field name for the line identifier.
func (l *Line) UnmarshalJSON(data []byte) error {
	type line Line
	aux := struct {
		*line
		LinienID Identifier `json:"linienId"`
	}{
		line: (*line)(l),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if l.LineID == "" {
		l.LineID = aux.LinienID
	}

	return nil
}

type Departures struct {
	Departure []Departure `json:"departure"`
}

type Departure struct {
	DepartureTime DepartureTime `json:"departureTime"`
}

type DepartureTime struct {
	TimePlanned string `json:"timePlanned,omitempty"`
	TimeReal    string `json:"timeReal,omitempty"`
	Countdown   int    `json:"countdown"`
}
