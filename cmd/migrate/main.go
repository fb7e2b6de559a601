package main

import (
	"cowork/config"
	"cowork/helper"
	"cowork/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction is required. Use 'up', 'down', 'drop' or 'step-up'")
	}

	cfg := config.Get()

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg("Migration failed")
	}
}
