// Package pipeline runs one fortune request end to end:
// normalize, classify, generate, record.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/element"
	"golf-fortune-engine/internal/services/fortune"
	"golf-fortune-engine/internal/services/recorder"
	"golf-fortune-engine/internal/utils"
)

// DefaultWorkers bounds AnalyzeAll when no worker count is given.
const DefaultWorkers = 4

// Pipeline turns a UserInput into a complete FortuneRecord.
type Pipeline struct {
	generator *fortune.Generator
	recorder  *recorder.Recorder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// New creates a pipeline. A nil recorder records nothing.
func New(gen *fortune.Generator, rec *recorder.Recorder) *Pipeline {
	if rec == nil {
		rec = recorder.New()
	}
	return &Pipeline{
		generator: gen,
		recorder:  rec,
		logger:    utils.Named("pipeline"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Generator returns the fortune generator.
func (p *Pipeline) Generator() *fortune.Generator {
	return p.generator
}

// Recorder returns the record fan-out.
func (p *Pipeline) Recorder() *recorder.Recorder {
	return p.recorder
}

// WithRecorder returns a copy of the pipeline that records through rec.
func (p *Pipeline) WithRecorder(rec *recorder.Recorder) *Pipeline {
	if rec == nil {
		rec = recorder.New()
	}
	clone := *p
	clone.recorder = rec
	return &clone
}

// Analyze builds and records the fortune for input. It never fails:
// persistence errors are logged by the recorder and do not change the result.
func (p *Pipeline) Analyze(ctx context.Context, input models.UserInput) *models.FortuneRecord {
	record := p.Build(ctx, input)
	p.recorder.Record(ctx, record)
	return record
}

// Build runs classification and generation without recording.
func (p *Pipeline) Build(ctx context.Context, input models.UserInput) *models.FortuneRecord {
	start := p.now()
	input.Normalize()

	requestID := p.newID()
	ctx = fortune.ContextWithRequestID(ctx, requestID)

	analysis := element.Classify(input.BirthDate)
	if analysis.Defaulted {
		p.logger.Warn("Unreadable birth date, using default analysis",
			utils.RequestID(requestID),
			zap.String("birth_date", input.BirthDate),
		)
	}

	result := p.generator.Generate(ctx, input, analysis)

	record := &models.FortuneRecord{
		RequestID: requestID,
		CreatedAt: start.UTC(),
		User:      input,
		Analysis:  analysis,
		Fortune:   result,
	}

	p.logger.Info("Analyzed user",
		utils.RequestID(requestID),
		zap.String("element", string(analysis.Element)),
		zap.String("source", string(result.Source)),
		zap.Duration("duration", p.now().Sub(start)),
	)
	return record
}

// AnalyzeAll runs Analyze over inputs with at most workers in flight.
// Results keep the input order.
func (p *Pipeline) AnalyzeAll(ctx context.Context, inputs []models.UserInput, workers int) []*models.FortuneRecord {
	return runAll(ctx, inputs, workers, p.Analyze)
}

// BuildAll is AnalyzeAll without recording.
func (p *Pipeline) BuildAll(ctx context.Context, inputs []models.UserInput, workers int) []*models.FortuneRecord {
	return runAll(ctx, inputs, workers, p.Build)
}

func runAll(ctx context.Context, inputs []models.UserInput, workers int, fn func(context.Context, models.UserInput) *models.FortuneRecord) []*models.FortuneRecord {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	records := make([]*models.FortuneRecord, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, input := range inputs {
		g.Go(func() error {
			records[i] = fn(ctx, input)
			return nil
		})
	}
	_ = g.Wait()

	return records
}
