package main

import (
	"flag"
	"log"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/app"
	"github.com/gfdmit/web-forum/board-service/internal/logger"
)

func main() {
	envFile := flag.String("env", ".env", "env file overlaid on the process environment; empty to skip")
	flag.Parse()

	conf, err := config.New(*envFile)
	if err != nil {
		log.Fatalf("[SETUP ERROR] error when reading config: %v", err)
	}

	logs, err := logger.New(conf.Log.Level, conf.Log.Format)
	if err != nil {
		log.Fatalf("[SETUP ERROR] error when setting up logger: %v", err)
	}

	err = app.Run(*conf, logs)
	if err != nil {
		logs.Fatalf("[APPLICATION ERROR] error: %v", err)
	}

	logs.Info("[SHUTDOWN] service shut down gracefully")
}
