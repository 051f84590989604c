package monitor

const StateUnknown = "unknown"

// Attributes are the descriptive values published alongside the departure time
type Attributes struct {
	Destination string
	Platform    string
	Direction   string
	Name        string
	Countdown   int

	// CountdownFollowing is nil when no departure exists after the tracked one
	CountdownFollowing *int
}

func (a *Attributes) Map() map[string]any {
	if a == nil {
		return map[string]any{}
	}

	attributes := map[string]any{
		"destination": a.Destination,
		"platform":    a.Platform,
		"direction":   a.Direction,
		"name":        a.Name,
		"countdown":   a.Countdown,
	}

	if a.CountdownFollowing != nil {
		attributes["countdown_following"] = *a.CountdownFollowing
	}

	return attributes
}

type state struct {
	timestamp  string
	attributes *Attributes
}

const timezoneOffsetIndex = 26

// FormatTimestamp turns the API's compact zone offset into a colon separated
// one, e.g. 2023-10-01T18:32:00.000+0200 becomes 2023-10-01T18:32:00.000+02:00.
// Inputs shorter than the expected layout are clamped rather than rejected.
func FormatTimestamp(raw string) string {
	head := raw[:max(len(raw)-2, 0)]
	tail := raw[min(timezoneOffsetIndex, len(raw)):]

	return head + ":" + tail
}
