package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/markhiner/Hiner.nyc/shared/constants"
	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	"github.com/markhiner/Hiner.nyc/shared/utils"
)

func startStreamWriter(ctx context.Context, w *bufio.Writer, streamName, groupName, consumerID string) {
	for {
		select {
		case <-ctx.Done():
			sharedlogger.L().Info("Client closed connection")
			return
		default:
			entries, err := broker.ReadGroup(ctx, streamName, groupName, consumerID)
			if err != nil {
				if err != redis.Nil {
					sharedlogger.L().Warn("Redis read error:", zap.Error(err))
					time.Sleep(waitRetryDelay)
				}
				continue
			}

			for _, stream := range entries {
				for _, msg := range stream.Messages {
					if err := relayMessage(ctx, w, streamName, groupName, msg); err != nil {
						if err != io.EOF {
							sharedlogger.L().Warn("Relay message error:", zap.Error(err))
						}
						return
					}
				}
			}
		}
	}
}

func relayMessage(ctx context.Context, w *bufio.Writer, streamName, groupName string, msg redis.XMessage) error {
	data := make(map[string]any)
	for k, v := range msg.Values {
		if k == "trace_context" {
			continue
		}
		data[k] = v
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	if err := w.Flush(); err != nil {
		return err
	}

	if err := broker.Ack(ctx, streamName, groupName, msg.ID); err != nil {
		sharedlogger.L().Warn("Ack error:", zap.Error(err))
	}

	// Terminal status ends the feed. The stream itself is left to its TTL:
	// the blocking wait reads the same records through its own consumer
	// group, and deleting here would tear that group down underneath it.
	if status, ok := data["status"].(string); ok {
		switch strings.ToLower(status) {
		case constants.StatusCompleted, constants.StatusFailed:
			return io.EOF
		}
	}

	return nil
}

// SearchEventsHandler streams the provider's status records for one search as
// server-sent events until the search reaches a terminal status.
func SearchEventsHandler(c *fiber.Ctx) error {
	searchID := c.Params("search_id")

	if searchID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid search ID",
			"data": fiber.Map{
				"error": "Invalid search ID",
			},
		})
	}

	streamName := utils.SearchResultStream(searchID)
	groupName := "search-events"
	// must be unique
	consumerID := fmt.Sprintf("events-%s", searchID)
	ctx := context.Background()

	// Create consumer group (idempotent)
	_ = broker.CreateGroup(ctx, streamName, groupName, "0")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		startStreamWriter(ctx, w, streamName, groupName, consumerID)
	})

	return nil
}
