// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/services/database"
	"golf-fortune-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	var db handlers.HealthChecker
	if cfg.DatabaseEnabled() {
		conn, err := database.New(context.Background(), cfg)
		if err != nil {
			utils.Named("lambda.health").Warn("Database unavailable", zap.Error(err))
		} else {
			defer conn.Close()
			db = conn
		}
	}

	lambda.Start(handlers.NewHealthHandler(cfg, db).Handle)
}
