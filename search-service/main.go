package main

import (
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/markhiner/Hiner.nyc/search-service/handler"
	"github.com/markhiner/Hiner.nyc/shared/constants"
	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	redisclient "github.com/markhiner/Hiner.nyc/shared/redis"
	"github.com/markhiner/Hiner.nyc/shared/tracing"
)

func main() {
	_ = godotenv.Load()

	tracing.MustInit(constants.ServiceSearch)
	sharedlogger.Init()
	redisclient.Init()
	defer tracing.Shutdown()
	defer sharedlogger.L().Sync()

	app := fiber.New()
	app.Use(otelfiber.Middleware())

	app.Post("/run_hotels_search", handler.RunHotelsSearchHandler)
	app.Get("/run_hotels_search/:search_id/events", handler.SearchEventsHandler)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// The provider publishes results.html here; the widget navigates to it
	// once its POST settles.
	siteDir := os.Getenv("SITE_DIR")
	if siteDir == "" {
		siteDir = "./site"
	}
	app.Static("/", siteDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Fatal(app.Listen(":" + port))
}
