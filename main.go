package main

import (
	"log"

	"github.com/Noop27/lesson-store/cmd/api"
	"github.com/Noop27/lesson-store/config"
	"github.com/Noop27/lesson-store/infra/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, cleanup := logger.New(cfg.Observability.LokiURL)
	defer cleanup()

	api.StartServer(cfg, zapLogger)
}
