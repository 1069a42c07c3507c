package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/database"
	"golf-fortune-engine/internal/services/filestore"
	s3service "golf-fortune-engine/internal/services/s3"
	"golf-fortune-engine/internal/utils"
)

var (
	errNoDatabase     = errors.New("no database configured: set DATABASE_URL or DB_HOST")
	errRecordNotFound = errors.New("fortune record not found")
)

var (
	showDay    string
	archiveDay string
	archiveMax int32
)

// dayLayout is the --day flag format.
const dayLayout = "2006-01-02"

func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(dayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --day %q, want YYYY-MM-DD: %w", value, err)
	}
	return day, nil
}

func openRepository(ctx context.Context) (*database.DB, *database.RecordRepository, error) {
	if !cfg.DatabaseEnabled() {
		return nil, nil, errNoDatabase
	}
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, database.NewRecordRepository(db), nil
}

var showCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Print a stored fortune record",
	Long: `show looks the record up in the local data directory, then Postgres,
then the S3 archive. --day narrows the S3 lookup to one archive day.`,
	Example: "  fortunectl show 0b6f7a52-6a8e-4c1f-9d0e-1c2b3a4d5e6f --day 2024-03-09",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(showDay)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		record, err := findRecord(ctx, args[0], day)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	},
}

func findRecord(ctx context.Context, requestID string, day time.Time) (*models.FortuneRecord, error) {
	logger := utils.Named("show").With(utils.RequestID(requestID))

	if store, err := filestore.New(cfg.DataDir); err == nil {
		record, err := store.Find(requestID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, filestore.ErrRecordNotFound) {
			logger.Warn("File store lookup failed", zap.Error(err))
		}
	}

	if cfg.DatabaseEnabled() {
		db, repo, err := openRepository(ctx)
		if err != nil {
			logger.Warn("Database lookup skipped", zap.Error(err))
		} else {
			defer db.Close()
			record, err := repo.GetByRequestID(ctx, requestID)
			if err == nil {
				return record, nil
			}
			if !errors.Is(err, database.ErrRecordNotFound) {
				logger.Warn("Database lookup failed", zap.Error(err))
			}
		}
	}

	if cfg.S3Bucket != "" {
		archive, err := s3service.NewService(ctx, cfg)
		if err != nil {
			logger.Warn("Archive lookup skipped", zap.Error(err))
		} else {
			record, err := archive.FindRecord(ctx, requestID, day)
			if err == nil {
				return record, nil
			}
			if !errors.Is(err, s3service.ErrRecordNotFound) {
				logger.Warn("Archive lookup failed", zap.Error(err))
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", errRecordNotFound, requestID)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect the S3 fortune archive",
}

var archiveListCmd = &cobra.Command{
	Use:     "ls",
	Short:   "List archived record keys",
	Example: "  fortunectl archive ls --day 2024-03-09",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(archiveDay)
		if err != nil {
			return err
		}
		if cfg.S3Bucket == "" {
			return s3service.ErrNoBucket
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		archive, err := s3service.NewService(ctx, cfg)
		if err != nil {
			return err
		}
		keys, err := archive.ListKeys(ctx, day, archiveMax)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showDay, "day", "", "archive day (YYYY-MM-DD, UTC)")

	archiveListCmd.Flags().StringVar(&archiveDay, "day", "", "archive day (YYYY-MM-DD, UTC), all days when empty")
	archiveListCmd.Flags().Int32Var(&archiveMax, "max", 100, "maximum keys to list")
	archiveCmd.AddCommand(archiveListCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the fortune_records table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		db, repo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "fortune_records ready")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report configured credentials and test connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "provider:  %s (%s)\n", cfg.LLMProvider, cfg.LLMModel)
		fmt.Fprintf(out, "llm key:   %s\n", presence(cfg.HasLLMCredential()))
		fmt.Fprintf(out, "data dir:  %s\n", cfg.DataDir)
		fmt.Fprintf(out, "s3 bucket: %s\n", presence(cfg.S3Bucket != ""))
		fmt.Fprintf(out, "ses:       %s\n", presence(cfg.SESSenderEmail != ""))

		if !cfg.DatabaseEnabled() {
			fmt.Fprintln(out, "database:  not configured")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		db, err := database.New(ctx, cfg)
		if err != nil {
			fmt.Fprintln(out, "database:  unreachable")
			return err
		}
		defer db.Close()
		fmt.Fprintln(out, "database:  connected")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored fortunes by source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		db, repo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := repo.CountBySource(ctx)
		if err != nil {
			return err
		}

		sources := make([]string, 0, len(counts))
		for source := range counts {
			sources = append(sources, string(source))
		}
		sort.Strings(sources)
		for _, source := range sources {
			fmt.Fprintf(cmd.OutOrStdout(), "%-9s %d\n", source, counts[models.FortuneSource(source)])
		}
		return nil
	},
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}
