package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/yeremiapane/qr-hotel-menu/config"
	"github.com/yeremiapane/qr-hotel-menu/database"
	"github.com/yeremiapane/qr-hotel-menu/router"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

func main() {
	utils.InitLogger(os.Getenv("LOG_LEVEL"))

	app := &cli.App{
		Name:  "qr-hotel-menu",
		Usage: "room service ordering backend for hotel QR menus",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func migrate(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBDebug)
	if err != nil {
		return err
	}
	return database.Migrate(db)
}

func serve(cliCtx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	deps, err := router.NewDependencies(db, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			utils.ErrorLogger.Errorf("shutdown: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
