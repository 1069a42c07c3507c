package pipeline

import (
	"context"

	"go.uber.org/zap"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/services/database"
	"golf-fortune-engine/internal/services/filestore"
	"golf-fortune-engine/internal/services/fortune"
	"golf-fortune-engine/internal/services/llm"
	"golf-fortune-engine/internal/services/recorder"
	s3service "golf-fortune-engine/internal/services/s3"
	"golf-fortune-engine/internal/services/ses"
	"golf-fortune-engine/internal/utils"
)

// Services holds the pipeline and the resources it owns.
type Services struct {
	Pipeline *Pipeline
	DB       *database.DB
	// Records is the Postgres sink, nil without a database.
	Records *database.RecordRepository
}

// Close releases the database pool, if any.
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// Setup wires the pipeline from configuration. Optional sinks that cannot be
// initialized are logged and skipped; the service keeps serving fortunes.
func Setup(ctx context.Context, cfg *config.Config) *Services {
	logger := utils.Named("setup")

	gen := fortune.NewFromConfig(cfg, llm.NewFromConfig(ctx, cfg))
	services := &Services{}

	var sinks []recorder.Sink

	store, err := filestore.New(cfg.DataDir, filestore.WithExtendedCSV(cfg.CSVExtended))
	if err != nil {
		logger.Warn("File store disabled", zap.String("dir", cfg.DataDir), zap.Error(err))
	} else {
		sinks = append(sinks, store)
	}

	if cfg.DatabaseEnabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			logger.Warn("Database disabled", zap.Error(err))
		} else {
			repo := database.NewRecordRepository(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Warn("Failed to ensure schema", zap.Error(err))
			}
			services.DB = db
			services.Records = repo
			sinks = append(sinks, repo)
		}
	}

	if cfg.S3Bucket != "" {
		archive, err := s3service.NewService(ctx, cfg)
		if err != nil {
			logger.Warn("S3 archive disabled", zap.Error(err))
		} else {
			sinks = append(sinks, archive)
		}
	}

	if cfg.SESSenderEmail != "" {
		mailer, err := ses.NewService(ctx, cfg)
		if err != nil {
			logger.Warn("SES mail disabled", zap.Error(err))
		} else {
			sinks = append(sinks, mailer)
		}
	}

	rec := recorder.New(sinks...)
	logger.Info("Pipeline ready",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", gen.Model()),
		zap.Bool("remote_enabled", cfg.HasLLMCredential()),
		zap.Strings("sinks", rec.Sinks()),
	)

	services.Pipeline = New(gen, rec)
	return services
}
