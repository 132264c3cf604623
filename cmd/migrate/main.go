package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/logger"
	"storefront-api/internal/migrate"
)

func main() {
	cfg, help, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "migrate", Env: cfg.Env, Level: cfg.Log.Level}).WithField("service", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if cfg.Args.Num(0) == "version" {
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			log.WithError(err).Fatal("read schema version")
		}
		log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("schema version")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}
	log.Info("migrations applied")
}
