package sensor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
)

const EventTypeSensorUpdated = "sensor-updated"

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      *Sensor   `json:"body"`
}

// QueueSink pushes an update event per published snapshot onto a redis queue
type QueueSink struct {
	Queue rmq.Queue
}

func NewQueueSink(connection rmq.Connection, queueName string) (*QueueSink, error) {
	queue, err := connection.OpenQueue(queueName)
	if err != nil {
		return nil, err
	}

	return &QueueSink{Queue: queue}, nil
}

func (q *QueueSink) Publish(ctx context.Context, sensor *Sensor) error {
	eventBytes, err := json.Marshal(Event{
		Type:      EventTypeSensorUpdated,
		Timestamp: sensor.LastUpdated,
		Body:      sensor,
	})
	if err != nil {
		return err
	}

	return q.Queue.PublishBytes(eventBytes)
}
