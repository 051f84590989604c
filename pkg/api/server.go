package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/travigo/wienerlinien/pkg/api/routes"
	"github.com/travigo/wienerlinien/pkg/metrics"
)

// NewApp builds the HTTP API exposing the sensors held by source
func NewApp(source routes.SensorSource, collector *metrics.Collector, logger zerolog.Logger) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger(logger))

	webApp.Get("version", routes.APIVersion)
	webApp.Get("metrics", adaptor.HTTPHandler(collector.Handler()))

	routes.SensorsRouter(webApp.Group("/sensors"), source)

	return webApp
}
