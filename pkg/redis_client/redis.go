package redis_client

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const DefaultConnectionAddress = "localhost:6379"

const queueConnectionTag = "wienerlinien"

// Connect opens the shared redis client and the rmq queue connection on top of it
func Connect(ctx context.Context, address string, password string, database int) error {
	if address == "" {
		address = DefaultConnectionAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, nil)
	if err != nil {
		client.Close()
		return err
	}

	Client = client
	QueueConnection = queueConnection

	return nil
}

func Close() error {
	if QueueConnection != nil {
		<-QueueConnection.StopAllConsuming()
	}

	if Client != nil {
		return Client.Close()
	}

	return nil
}
