package monitor

import (
	"fmt"
	"strings"
)

// Variant selects which upcoming departure a line monitor tracks
type Variant string

const (
	VariantNext      Variant = "next"
	VariantFollowing Variant = "following"
)

type departureDefinition struct {
	Index      int
	NameFormat string
}

var departures = map[Variant]departureDefinition{
	VariantNext: {
		Index:      0,
		NameFormat: "%s next departure",
	},
	VariantFollowing: {
		Index:      1,
		NameFormat: "%s following departure",
	},
}

func (v Variant) Valid() bool {
	_, ok := departures[v]
	return ok
}

// Index is the position in the departure list this variant reads
func (v Variant) Index() int {
	return departures[v].Index
}

func (v Variant) displayName(identity string) string {
	return fmt.Sprintf(departures[v].NameFormat, identity)
}

// ParseSelector turns the firstnext configuration value into the variants
// created for every discovered line.
func ParseSelector(selector string) ([]Variant, error) {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "first", "next":
		return []Variant{VariantNext}, nil
	case "following":
		return []Variant{VariantFollowing}, nil
	case "both":
		return []Variant{VariantNext, VariantFollowing}, nil
	default:
		return nil, fmt.Errorf("unknown departure selector %q", selector)
	}
}
