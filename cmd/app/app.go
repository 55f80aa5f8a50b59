package main

import (
	"os"

	"github.com/DRSN-tech/pos-register/internal/app"
	config "github.com/DRSN-tech/pos-register/internal/cfg"
	"github.com/DRSN-tech/pos-register/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	log.Infof("starting register: storage %s, session %s", cfg.Register.Storage, cfg.Register.Session)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
