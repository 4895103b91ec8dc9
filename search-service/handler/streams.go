package handler

import (
	"context"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/markhiner/Hiner.nyc/shared/redis"
)

// streamBroker is the slice of redis the handlers touch. Tests swap in a
// stub; everything else goes through the shared client.
type streamBroker interface {
	Add(ctx context.Context, stream string, values map[string]any) error
	ReadGroup(ctx context.Context, stream, group, consumer string) ([]redis.XStream, error)
	Ack(ctx context.Context, stream, group, messageID string) error
	CreateGroup(ctx context.Context, stream, group, id string) error
}

var broker streamBroker = redisBroker{}

type redisBroker struct{}

func (redisBroker) Add(ctx context.Context, stream string, values map[string]any) error {
	return redisclient.AddToStream(ctx, stream, values)
}

func (redisBroker) ReadGroup(ctx context.Context, stream, group, consumer string) ([]redis.XStream, error) {
	return redisclient.ReadFromGroup(ctx, stream, group, consumer)
}

func (redisBroker) Ack(ctx context.Context, stream, group, messageID string) error {
	return redisclient.AcknowledgeMessage(ctx, stream, group, messageID)
}

func (redisBroker) CreateGroup(ctx context.Context, stream, group, id string) error {
	return redisclient.CreateStreamGroup(ctx, stream, group, id)
}
