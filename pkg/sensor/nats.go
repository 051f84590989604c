package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const DefaultSubjectPrefix = "wienerlinien.sensors"

// NATSSink publishes every snapshot to <prefix>.<unique id>
type NATSSink struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewNATSSink(url string, subjectPrefix string, logger zerolog.Logger) (*NATSSink, error) {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}

	conn, err := nats.Connect(url,
		nats.Name("wienerlinien-monitor"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	return &NATSSink{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (n *NATSSink) Close() {
	if n.conn != nil {
		_ = n.conn.Flush()
		n.conn.Close()
	}
}

func (n *NATSSink) Publish(ctx context.Context, sensor *Sensor) error {
	sensorJSON, err := json.Marshal(sensor)
	if err != nil {
		return err
	}

	return n.conn.Publish(Subject(n.subjectPrefix, sensor.UniqueID), sensorJSON)
}

// Subject builds a valid NATS subject for a sensor ID
func Subject(prefix string, id string) string {
	return fmt.Sprintf("%s.%s", prefix, subjectToken(id))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = replacer.Replace(s)
	if s == "" {
		s = "_"
	}

	return s
}
