package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/di"
	"github.com/mikey/email-classifier/internal/factory"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	err = container.Invoke(func(
		logger *zap.Logger,
		server *web.Server,
		mailIntake *intake.Intake,
		store factory.SessionStore,
	) error {
		defer logger.Sync()
		defer store.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if mailIntake != nil {
			if err := mailIntake.Start(); err != nil {
				return err
			}
			defer func() {
				if err := mailIntake.Stop(); err != nil {
					logger.Error("Failed to stop mail intake", zap.Error(err))
				}
			}()
		}

		if err := server.Run(ctx); err != nil {
			logger.Error("Web server failed", zap.Error(err))
			return err
		}

		logger.Info("Shutting down")
		return nil
	})
	if err != nil {
		fmt.Printf("Failed to run application: %v\n", err)
		os.Exit(1)
	}
}
