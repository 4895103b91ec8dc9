package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/markhiner/Hiner.nyc/shared/constants"
	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	"github.com/markhiner/Hiner.nyc/shared/tracing"
	"github.com/markhiner/Hiner.nyc/shared/utils"
)

// resultWait bounds how long the handler holds the request open for the
// provider. The upstream fetch alone is allowed 45s.
var resultWait = 90 * time.Second

// waitRetryDelay keeps the wait loop from spinning when a read fails outright
// instead of blocking server-side.
const waitRetryDelay = 200 * time.Millisecond

// RunHotelsSearchHandler accepts a search request, hands it to the provider
// over the request stream and keeps the request open until the provider
// reports the results page as published. The widget navigates to results.html
// only after this response settles, so responding early would race the page
// write.
func RunHotelsSearchHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tracer := otel.Tracer(fmt.Sprintf("%s/handler", constants.ServiceSearch))
	ctx, span := tracer.Start(ctx, "RunHotelsSearchHandler")
	defer span.End()

	var payload SearchPayload
	if err := c.BodyParser(&payload); err != nil {
		sharedlogger.WithTrace(ctx).Warn("Invalid request:", zap.Error(err))
		span.RecordError(err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
			"data": fiber.Map{
				"error": err.Error(),
			},
		})
	}

	req, err := Normalize(payload)
	if err != nil {
		sharedlogger.WithTrace(ctx).Warn("Unusable search payload:", zap.Error(err))
		span.RecordError(err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
			"data": fiber.Map{
				"error": err.Error(),
			},
		})
	}

	searchID := uuid.New().String()
	values := utils.StructToMap(req)
	values["search_id"] = searchID
	values["trace_context"] = tracing.InjectTracingToJSON(ctx)

	if err := broker.Add(ctx, constants.HotelSearchRequested, values); err != nil {
		sharedlogger.WithSearch(ctx, searchID).Warn("Failed to add to stream:", zap.Error(err))
		span.RecordError(err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process request",
			"data": fiber.Map{
				"error": err.Error(),
			},
		})
	}

	span.AddEvent("Search request submitted")

	result, err := waitForResult(ctx, searchID)
	if err != nil {
		sharedlogger.WithSearch(ctx, searchID).Warn("Search did not complete:", zap.Error(err))
		span.RecordError(err)
		return c.Status(http.StatusGatewayTimeout).JSON(fiber.Map{
			"success": false,
			"message": "Search did not complete",
			"data": fiber.Map{
				"search_id": searchID,
				"error":     err.Error(),
			},
		})
	}

	status, _ := result["status"].(string)
	if status == constants.StatusFailed {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": "Search failed",
			"data": fiber.Map{
				"search_id": searchID,
				"status":    status,
				"error":     result["error"],
			},
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Search completed",
		"data": fiber.Map{
			"search_id":     searchID,
			"status":        status,
			"total_results": result["total_results"],
		},
	})
}

// waitForResult consumes the per-search result stream until a terminal status
// shows up. The SSE feed uses its own consumer group, so both can observe the
// same records.
func waitForResult(ctx context.Context, searchID string) (map[string]any, error) {
	streamName := utils.SearchResultStream(searchID)
	groupName := "search-wait"
	consumerID := fmt.Sprintf("wait-%s", searchID)

	_ = broker.CreateGroup(ctx, streamName, groupName, "0")

	deadline := time.Now().Add(resultWait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entries, err := broker.ReadGroup(ctx, streamName, groupName, consumerID)
		if err != nil {
			if err != redis.Nil {
				sharedlogger.WithSearch(ctx, searchID).Warn("Redis read error:", zap.Error(err))
				time.Sleep(waitRetryDelay)
			}
			continue
		}

		for _, stream := range entries {
			for _, msg := range stream.Messages {
				if err := broker.Ack(ctx, streamName, groupName, msg.ID); err != nil {
					sharedlogger.WithSearch(ctx, searchID).Warn("Ack error:", zap.Error(err))
				}

				status, _ := msg.Values["status"].(string)
				if status == constants.StatusCompleted || status == constants.StatusFailed {
					return msg.Values, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no terminal status within %s", resultWait)
}
