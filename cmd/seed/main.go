package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/logger"
	productrepo "storefront-api/internal/repository/product"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
	"storefront-api/internal/seed"
	usersvc "storefront-api/internal/service/user"
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
	log := logger.New(logger.Options{Service: "seed", Env: cfg.Env, Level: cfg.Log.Level}).WithField("service", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	users := usersvc.New(userrepo.NewPostgres(pool, log), tokenrepo.NewPostgres(pool), log)
	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, log), users, log); err != nil {
		log.WithError(err).Fatal("seed apply")
	}
	log.Info("seed applied")
}
