package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/markhiner/Hiner.nyc/provider-service/render"
	"github.com/markhiner/Hiner.nyc/provider-service/serpapi"
	"github.com/markhiner/Hiner.nyc/shared/constants"
	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
	redisclient "github.com/markhiner/Hiner.nyc/shared/redis"
	"github.com/markhiner/Hiner.nyc/shared/tracing"
	"github.com/markhiner/Hiner.nyc/shared/utils"
)

var (
	group    = "hotel-group"
	consumer = uuid.NewString()
)

type worker struct {
	client    *serpapi.Client
	siteDir   string
	minRating float64
}

func main() {
	_ = godotenv.Load()

	tracing.MustInit(constants.ServiceProvider)
	defer tracing.Shutdown()

	redisclient.Init()
	sharedlogger.Init()
	defer sharedlogger.L().Sync()

	apiKey := os.Getenv("SERPAPI_KEY")
	if apiKey == "" {
		sharedlogger.L().Fatal("SERPAPI_KEY is required")
	}

	siteDir := os.Getenv("SITE_DIR")
	if siteDir == "" {
		siteDir = "./site"
	}

	minRating := 0.0
	if raw := os.Getenv("MIN_RATING"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			sharedlogger.L().Fatal("invalid MIN_RATING", zap.String("value", raw))
		}
		minRating = f
	}

	w := &worker{
		client:    &serpapi.Client{APIKey: apiKey},
		siteDir:   siteDir,
		minRating: minRating,
	}

	redisCtx := context.Background()

	err := redisclient.CreateStreamGroup(redisCtx, constants.HotelSearchRequested, group, "0")
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		sharedlogger.L().Fatal("failed to create group", zap.Error(err))
	}

	sharedlogger.L().Info("Provider service started")

	for {
		msgs, err := redisclient.ReadFromGroup(redisCtx, constants.HotelSearchRequested, group, consumer)
		if err != nil && err != redis.Nil {
			sharedlogger.L().Warn("XReadGroup error:", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			for _, m := range msg.Messages {
				go w.handleMessage(m.ID, m.Values)
			}
		}
	}
}

func (w *worker) handleMessage(messageID string, values map[string]any) {
	ctx := tracing.ExtractTracingFromJSON(context.Background(), values["trace_context"])

	tracer := otel.Tracer(fmt.Sprintf("%s/worker", constants.ServiceProvider))
	ctx, span := tracer.Start(ctx, "HotelSearchWorker")
	defer span.End()

	w.handleSearch(ctx, values)

	if err := redisclient.AcknowledgeMessage(ctx, constants.HotelSearchRequested, group, messageID); err != nil {
		span.RecordError(err)
		sharedlogger.WithTrace(ctx).Warn("failed to ack message", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (w *worker) handleSearch(ctx context.Context, values map[string]any) {
	tracer := otel.Tracer(fmt.Sprintf("%s/worker", constants.ServiceProvider))
	ctx, span := tracer.Start(ctx, "handleSearch")
	defer span.End()

	searchID, _ := values["search_id"].(string)
	if searchID == "" {
		sharedlogger.WithTrace(ctx).Warn("message without search_id, dropping")
		return
	}
	log := sharedlogger.WithSearch(ctx, searchID)

	if err := w.publishStatus(ctx, searchID, map[string]any{
		"status": constants.StatusProcessing,
	}); err != nil {
		span.RecordError(err)
		log.Warn("failed to publish processing status", zap.Error(err))
		return
	}

	req, err := utils.MapToStruct[sharedmodels.SearchRequest](values)
	if err != nil {
		w.fail(ctx, searchID, fmt.Errorf("decode request: %w", err))
		return
	}

	hotels, err := w.client.Search(ctx, req)
	if err != nil {
		span.RecordError(err)
		w.fail(ctx, searchID, err)
		return
	}
	hotels = serpapi.FilterByRating(hotels, w.minRating)

	page, err := render.Page(req, hotels)
	if err != nil {
		span.RecordError(err)
		w.fail(ctx, searchID, fmt.Errorf("render results: %w", err))
		return
	}
	if err := render.Write(w.siteDir, page); err != nil {
		span.RecordError(err)
		w.fail(ctx, searchID, fmt.Errorf("publish results: %w", err))
		return
	}

	log.Info("search completed", zap.String("q", req.Q), zap.Int("results", len(hotels)))

	if err := w.publishStatus(ctx, searchID, map[string]any{
		"status":        constants.StatusCompleted,
		"total_results": len(hotels),
	}); err != nil {
		span.RecordError(err)
		log.Warn("failed to publish completed status", zap.Error(err))
	}
}

func (w *worker) fail(ctx context.Context, searchID string, cause error) {
	sharedlogger.WithSearch(ctx, searchID).Warn("search failed", zap.Error(cause))

	if err := w.publishStatus(ctx, searchID, map[string]any{
		"status": constants.StatusFailed,
		"error":  cause.Error(),
	}); err != nil {
		sharedlogger.WithSearch(ctx, searchID).Warn("failed to publish failed status", zap.Error(err))
	}
}

func (w *worker) publishStatus(ctx context.Context, searchID string, extra map[string]any) error {
	payload := map[string]any{
		"search_id":     searchID,
		"trace_context": tracing.InjectTracingToJSON(ctx),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return redisclient.AddToStream(ctx, utils.SearchResultStream(searchID), payload)
}
