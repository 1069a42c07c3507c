// Analyze Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/services/pipeline"
	"golf-fortune-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	services := pipeline.Setup(context.Background(), cfg)
	defer services.Close()

	lambda.Start(handlers.NewAnalyzeHandler(services.Pipeline).Handle)
}
