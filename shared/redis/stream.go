package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// streamTTL is the only cleanup a search stream gets: both the request
	// stream and the per-search result streams are transient, and consumers
	// never delete them (the blocking wait and the SSE feed read the same
	// records through separate groups).
	streamTTL = 30 * time.Minute

	readBlock = 5 * time.Second
	readCount = 10
)

func AddToStream(ctx context.Context, stream string, values map[string]any) error {
	_, err := Client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()

	Client.Expire(ctx, stream, streamTTL)
	return err
}

func ReadFromGroup(
	ctx context.Context,
	streamName string,
	groupName string,
	consumerID string,
) ([]redis.XStream, error) {
	return Client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerID,
		Streams:  []string{streamName, ">"},
		Block:    readBlock,
		Count:    readCount,
	}).Result()
}

func AcknowledgeMessage(ctx context.Context, streamName string, groupName string, messageID string) error {
	return Client.XAck(ctx, streamName, groupName, messageID).Err()
}

func CreateStreamGroup(ctx context.Context, streamName string, groupName string, id string) error {
	return Client.XGroupCreateMkStream(ctx, streamName, groupName, id).Err()
}
