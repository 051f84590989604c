package sensor

import (
	"context"
	"sort"
	"sync"
)

// Registry keeps the latest snapshot of every sensor in memory
type Registry struct {
	mu      sync.RWMutex
	sensors map[string]*Sensor
}

func NewRegistry() *Registry {
	return &Registry{
		sensors: map[string]*Sensor{},
	}
}

func (r *Registry) Publish(ctx context.Context, sensor *Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sensors[sensor.UniqueID] = sensor.Copy()

	return nil
}

func (r *Registry) Get(id string) (*Sensor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sensor, ok := r.sensors[id]
	if !ok {
		return nil, false
	}

	return sensor.Copy(), true
}

// List returns all sensors ordered by unique ID
func (r *Registry) List() []*Sensor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sensors := make([]*Sensor, 0, len(r.sensors))
	for _, sensor := range r.sensors {
		sensors = append(sensors, sensor.Copy())
	}

	sort.Slice(sensors, func(a, b int) bool {
		return sensors[a].UniqueID < sensors[b].UniqueID
	})

	return sensors
}
