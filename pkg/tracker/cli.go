package tracker

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/wienerlinien/pkg/api"
	"github.com/travigo/wienerlinien/pkg/config"
	"github.com/travigo/wienerlinien/pkg/metrics"
	"github.com/travigo/wienerlinien/pkg/monitor"
	"github.com/travigo/wienerlinien/pkg/redis_client"
	"github.com/travigo/wienerlinien/pkg/sensor"
	"github.com/travigo/wienerlinien/pkg/wienerlinien"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the YAML configuration file",
		EnvVars: []string{"WIENERLINIEN_CONFIG"},
	}

	return &cli.Command{
		Name:  "monitor",
		Usage: "Track Wiener Linien departures for the configured stops",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the departure trackers and the sensor API",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides the configuration",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					if c.String("listen") != "" {
						cfg.Listen = c.String("listen")
					}

					return run(c.Context, cfg, log.Logger)
				},
			},
			{
				Name:  "test",
				Usage: "fetch every configured stop once and print the resulting sensors",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					return test(c.Context, cfg, log.Logger)
				},
			},
		},
	}
}

func fetcherFactory(cfg *config.Config, logger zerolog.Logger) monitor.FetcherFactory {
	return func(stopID string) monitor.Fetcher {
		return wienerlinien.NewFetcher(stopID,
			wienerlinien.WithBaseURL(cfg.BaseURL),
			wienerlinien.WithTimeout(cfg.Timeout),
			wienerlinien.WithUserAgent(cfg.UserAgent),
			wienerlinien.WithLogger(logger),
		)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	variants, err := monitor.ParseSelector(cfg.FirstNext)
	if err != nil {
		return err
	}

	if cfg.APIKey != "" {
		logger.Warn().Msg("apikey is configured but the monitor endpoint does not use it")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	registry := sensor.NewRegistry()
	sinks := sensor.Sinks{registry}

	if cfg.Redis.Enabled {
		if err := redis_client.Connect(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database); err != nil {
			return err
		}
		defer redis_client.Close()

		sinks = append(sinks, sensor.NewRedisStore(redis_client.Client, cfg.Redis.Expiration))

		if cfg.Redis.Queue != "" {
			queueSink, err := sensor.NewQueueSink(redis_client.QueueConnection, cfg.Redis.Queue)
			if err != nil {
				return err
			}
			sinks = append(sinks, queueSink)
		}

		logger.Info().Str("address", cfg.Redis.Address).Str("queue", cfg.Redis.Queue).Msg("Publishing sensors to redis")
	}

	if cfg.NATS.URL != "" {
		natsSink, err := sensor.NewNATSSink(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			return err
		}
		defer natsSink.Close()

		sinks = append(sinks, natsSink)

		logger.Info().Str("url", cfg.NATS.URL).Msg("Publishing sensors to NATS")
	}

	webApp := api.NewApp(registry, collector, logger)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Msg("Starting sensor API")
		if err := webApp.Listen(cfg.Listen); err != nil {
			logger.Error().Err(err).Msg("Sensor API stopped")
		}
	}()
	defer webApp.ShutdownWithTimeout(5 * time.Second)

	manager := &TrackerManager{
		Stops:       cfg.Stops,
		Variants:    variants,
		RefreshRate: cfg.ScanInterval,
		NewFetcher:  fetcherFactory(cfg, logger),
		Sink:        sinks,
		Metrics:     collector,
		Logger:      logger,
	}

	err = manager.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func test(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	variants, err := monitor.ParseSelector(cfg.FirstNext)
	if err != nil {
		return err
	}

	monitors, err := monitor.Setup(ctx, logger, fetcherFactory(cfg, logger), cfg.Stops, variants)
	if err != nil {
		return err
	}

	registry := sensor.NewRegistry()
	for _, lineMonitor := range monitors {
		lineTracker := &LineTracker{
			Monitor: lineMonitor,
			Sink:    registry,
			Logger:  logger,
		}

		result := lineTracker.Tick(ctx)
		if result.Outcome != monitor.OutcomeUpdated {
			logger.Warn().Str("id", lineMonitor.UniqueID()).Str("reason", result.ReasonLabel()).Msg("Line monitor has no departure")
			if err := registry.Publish(ctx, sensor.FromEntity(lineMonitor, time.Now())); err != nil {
				return err
			}
		}
	}

	for _, s := range registry.List() {
		pretty.Println(s)
	}

	return nil
}
