package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/importer"
	"storefront-api/internal/logger"
	"storefront-api/internal/repository/product"
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
	filePath := cfg.Args.Num(0)
	if filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: importer [flags] <products.csv>")
		os.Exit(2)
	}
	log := logger.New(logger.Options{Service: "importer", Env: cfg.Env, Level: cfg.Log.Level}).WithField("service", "importer")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.WithError(err).Fatal("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, log), log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.WithError(err).WithField("imported", count).Fatal("import failed")
	}
	log.WithFields(logrus.Fields{"imported": count, "file": filePath, "took": time.Since(start).Truncate(time.Millisecond).String()}).Info("import finished")
}
