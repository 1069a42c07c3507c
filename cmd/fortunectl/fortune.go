package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/element"
	"golf-fortune-engine/internal/services/pipeline"
	"golf-fortune-engine/internal/utils"
)

var (
	genInput    models.UserInput
	genRecord   bool
	genStrict   bool
	batchFile   string
	batchJobs   int
	batchOut    string
	batchRecord bool
)

var classifyCmd = &cobra.Command{
	Use:     "classify <birth-date>",
	Short:   "Print the element analysis for a birth date",
	Example: "  fortunectl classify 1990.05.15",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), element.Classify(args[0]))
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one fortune and print the analyze response",
	Example: `  fortunectl generate --name 김철수 --birth-date 1990.05.15 --birth-time 14:30 --gender 남성 --handicap 15
  echo '{"name":"김철수","birthDate":"1990.05.15"}' | fortunectl generate --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := genInput
		if stdin, _ := cmd.Flags().GetBool("stdin"); stdin {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("invalid user input: %w", err)
			}
		}
		if genStrict {
			input.Normalize()
			if err := models.ValidateUserInput(&input); err != nil {
				return fmt.Errorf("invalid user input: %w", err)
			}
		}

		services := pipeline.Setup(cmd.Context(), cfg)
		defer services.Close()

		var record *models.FortuneRecord
		if genRecord {
			record = services.Pipeline.Analyze(cmd.Context(), input)
		} else {
			record = services.Pipeline.Build(cmd.Context(), input)
		}
		return printJSON(cmd.OutOrStdout(), handlers.NewAnalyzeResponse(record))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate fortunes for every row of a registrations CSV",
	Long: `batch checks the CSV header, generates a fortune per row and optionally
writes all records to a JSON file. With --record every record also goes to
the configured sinks; Postgres receives the whole batch in one transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(batchFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", batchFile, err)
		}
		if check := utils.ValidateCSVStructure(string(content)); !check.Valid {
			return fmt.Errorf("invalid CSV %s: %s", batchFile, describeCSVProblems(check))
		}

		logger := utils.Named("batch")
		users, parseErrors := utils.NewCSVParser().ParseUsers(string(content))
		for _, perr := range parseErrors {
			logger.Warn("Skipped row", zap.Error(perr))
		}
		if len(users) == 0 {
			return fmt.Errorf("no usable rows in %s", batchFile)
		}

		services := pipeline.Setup(cmd.Context(), cfg)
		defer services.Close()

		start := time.Now()
		var records []*models.FortuneRecord
		var recordErr error
		if batchRecord {
			records, recordErr = recordBatch(cmd.Context(), services, users)
		} else {
			records = services.Pipeline.BuildAll(cmd.Context(), users, batchJobs)
		}

		counts := make(map[models.FortuneSource]int)
		for _, r := range records {
			counts[r.Fortune.Source]++
		}
		logger.Info("Batch complete",
			zap.Int("records", len(records)),
			zap.Int("skipped", len(parseErrors)),
			zap.Bool("recorded", batchRecord),
			zap.Int("ai", counts[models.FortuneSourceAI]),
			zap.Int("partial", counts[models.FortuneSourcePartial]),
			zap.Int("template", counts[models.FortuneSourceTemplate]),
			zap.Duration("duration", time.Since(start)),
		)

		if batchOut != "" {
			if err := writeJSONFile(batchOut, records); err != nil {
				return err
			}
		}
		return recordErr
	},
}

// recordBatch analyzes users through every sink except Postgres, then stores
// the batch in Postgres with a single bulk insert.
func recordBatch(ctx context.Context, services *pipeline.Services, users []models.UserInput) ([]*models.FortuneRecord, error) {
	p := services.Pipeline
	if services.Records == nil {
		return p.AnalyzeAll(ctx, users, batchJobs), nil
	}

	p = p.WithRecorder(p.Recorder().Without(services.Records.Name()))
	records := p.AnalyzeAll(ctx, users, batchJobs)

	inserted, err := services.Records.BulkInsert(ctx, records)
	if err != nil {
		return records, fmt.Errorf("failed to store batch: %w", err)
	}
	utils.Named("batch").Info("Stored batch", zap.Int("inserted", inserted))
	return records, nil
}

func describeCSVProblems(check *utils.CSVValidationResult) string {
	var problems []string
	if len(check.MissingColumns) > 0 {
		problems = append(problems, "missing columns "+strings.Join(check.MissingColumns, ", "))
	}
	if check.RowCount == 0 {
		problems = append(problems, "no data rows")
	}
	problems = append(problems, check.Errors...)
	return strings.Join(problems, "; ")
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := printJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genInput.Name, "name", "", "user name")
	f.StringVar(&genInput.BirthDate, "birth-date", "", "birth date (YYYY.MM.DD)")
	f.StringVar(&genInput.BirthTime, "birth-time", "", "birth time (HH:MM), empty if unknown")
	f.StringVar(&genInput.Gender, "gender", models.GenderMale, "gender label")
	f.IntVar(&genInput.Handicap, "handicap", 20, "golf handicap")
	f.StringVar(&genInput.Email, "email", "", "email address for the fortune mail")
	f.Bool("stdin", false, "read a UserInput JSON document from stdin")
	f.BoolVar(&genRecord, "record", false, "persist the record to the configured sinks")
	f.BoolVar(&genStrict, "strict", false, "reject empty names and implausible birth years")

	b := batchCmd.Flags()
	b.StringVarP(&batchFile, "file", "f", "", "registrations CSV")
	b.IntVarP(&batchJobs, "jobs", "j", pipeline.DefaultWorkers, "concurrent requests")
	b.StringVarP(&batchOut, "out", "o", "", "write all records to this JSON file")
	b.BoolVar(&batchRecord, "record", false, "persist records to the configured sinks")
	_ = batchCmd.MarkFlagRequired("file")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
