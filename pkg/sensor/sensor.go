// Package sensor holds the snapshot of a line monitor as the home automation
// side sees it, and the sinks such snapshots are published to.
package sensor

import (
	"context"
	"errors"
	"time"

	"github.com/jinzhu/copier"
)

// Entity is anything that can be exposed as a sensor
type Entity interface {
	UniqueID() string
	Name() string
	State() string
	Icon() string
	DeviceClass() string
	Attributes() map[string]any
	StopID() string
	Variant() string
}

type Sensor struct {
	UniqueID    string         `json:"unique_id" groups:"basic,detailed"`
	Name        string         `json:"name" groups:"basic,detailed"`
	State       string         `json:"state" groups:"basic,detailed"`
	Icon        string         `json:"icon" groups:"detailed"`
	DeviceClass string         `json:"device_class" groups:"detailed"`
	Attributes  map[string]any `json:"attributes" groups:"detailed"`

	StopID  string `json:"stop_id" groups:"basic,detailed"`
	Variant string `json:"variant" groups:"basic,detailed"`

	LastUpdated time.Time `json:"last_updated" groups:"basic,detailed"`
}

func FromEntity(entity Entity, now time.Time) *Sensor {
	return &Sensor{
		UniqueID:    entity.UniqueID(),
		Name:        entity.Name(),
		State:       entity.State(),
		Icon:        entity.Icon(),
		DeviceClass: entity.DeviceClass(),
		Attributes:  entity.Attributes(),
		StopID:      entity.StopID(),
		Variant:     entity.Variant(),
		LastUpdated: now,
	}
}

// Copy returns a deep copy so sinks never share attribute maps
func (s *Sensor) Copy() *Sensor {
	copied := *s
	copied.Attributes = map[string]any{}

	if err := copier.CopyWithOption(&copied.Attributes, s.Attributes, copier.Option{DeepCopy: true}); err != nil {
		for key, value := range s.Attributes {
			copied.Attributes[key] = value
		}
	}

	return &copied
}

type Sink interface {
	Publish(ctx context.Context, sensor *Sensor) error
}

// Sinks publishes to every sink in order and joins the failures
type Sinks []Sink

func (s Sinks) Publish(ctx context.Context, sensor *Sensor) error {
	var errs []error

	for _, sink := range s {
		if err := sink.Publish(ctx, sensor); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
