package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/wienerlinien/pkg/tracker"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if os.Getenv("WIENERLINIEN_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("WIENERLINIEN_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "wienerlinien",
		Description: "Departure sensors for Wiener Linien stops",

		Commands: []*cli.Command{
			tracker.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
