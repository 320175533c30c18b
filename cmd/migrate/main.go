package main

import (
	"flag"

	"attendance.service/internal/config"
	"attendance.service/pkg/database"
	"attendance.service/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()

	if err := database.Migrate(db, action); err != nil {
		log.Fatal().Err(err).Str("action", action).Msg("Migration failed")
	}
	log.Info().Str("action", action).Msg("Migration completed")
}
