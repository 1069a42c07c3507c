// Package fortune turns a user and their element analysis into a fortune.
//
// The remote text generator is tried once (plus any configured retries). Any
// failure, and any section the response left out, is filled from a seeded
// template bank so Generate always returns a complete result.
package fortune

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/llm"
	"golf-fortune-engine/internal/utils"
)

// Params are the sampling parameters sent with each remote request.
type Params struct {
	Temperature      float64
	TopP             float64
	MaxTokens        int
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultParams mirrors the values the service has always used.
func DefaultParams() Params {
	return Params{
		Temperature:      0.8,
		TopP:             0.9,
		MaxTokens:        1500,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}
}

// Generator produces fortunes. It is safe for concurrent use.
type Generator struct {
	llm     llm.TextGenerator
	catalog *Catalog
	prompt  PromptOptions
	params  Params
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes template and club selection reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithCatalog replaces the embedded club catalog. A catalog without clubs is
// ignored.
func WithCatalog(c *Catalog) Option {
	return func(g *Generator) {
		if c != nil && c.Len() > 0 {
			g.catalog = c
		}
	}
}

// WithPromptOptions sets the prompt shape and section length.
func WithPromptOptions(opts PromptOptions) Option {
	return func(g *Generator) {
		g.prompt = opts
	}
}

// WithParams sets the sampling parameters.
func WithParams(p Params) Option {
	return func(g *Generator) {
		g.params = p
	}
}

// NewGenerator creates a generator backed by gen.
func NewGenerator(gen llm.TextGenerator, opts ...Option) *Generator {
	if gen == nil {
		gen = llm.NewDisabled("")
	}

	g := &Generator{
		llm:     gen,
		catalog: DefaultCatalog(),
		prompt:  PromptOptions{Format: PromptFormatJSON, Sentences: DefaultSentences},
		params:  DefaultParams(),
		logger:  utils.Named("fortune"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// NewFromConfig creates a generator using the service configuration.
func NewFromConfig(cfg *config.Config, gen llm.TextGenerator) *Generator {
	params := DefaultParams()
	params.Temperature = cfg.LLMTemperature
	params.TopP = cfg.LLMTopP
	params.MaxTokens = cfg.LLMMaxTokens

	format := PromptFormatJSON
	if cfg.LLMResponseFormat == config.ResponseFormatText {
		format = PromptFormatText
	}

	opts := []Option{
		WithParams(params),
		WithPromptOptions(PromptOptions{Format: format, Sentences: cfg.SentencesPerSection}),
	}
	if cfg.FortuneSeed != 0 {
		opts = append(opts, WithSeed(cfg.FortuneSeed))
	}
	if cfg.CatalogPath != "" {
		catalog, err := LoadCatalog(cfg.CatalogPath)
		if err != nil {
			utils.Named("fortune").Warn("Using embedded club catalog",
				zap.String("path", cfg.CatalogPath),
				zap.Error(err),
			)
		} else {
			opts = append(opts, WithCatalog(catalog))
		}
	}
	return NewGenerator(gen, opts...)
}

// Generate returns a complete fortune. Remote failures are logged and absorbed.
func (g *Generator) Generate(ctx context.Context, input models.UserInput, analysis models.ElementAnalysis) models.FortuneResult {
	input.Normalize()
	logger := g.logger
	if id, ok := RequestIDFromContext(ctx); ok {
		logger = logger.With(utils.RequestID(id))
	}

	system, prompt := BuildPrompt(input, analysis, g.prompt)
	res := g.llm.Generate(ctx, llm.Request{
		System:           system,
		Prompt:           prompt,
		Temperature:      g.params.Temperature,
		TopP:             g.params.TopP,
		MaxTokens:        g.params.MaxTokens,
		FrequencyPenalty: g.params.FrequencyPenalty,
		PresencePenalty:  g.params.PresencePenalty,
		JSONMode:         g.prompt.Format != PromptFormatText,
	})

	remoteRequestsTotal.WithLabelValues(res.Outcome.String()).Inc()
	if res.Attempts > 0 {
		remoteLatency.Observe(res.Latency.Seconds())
	}

	var parsed Parsed
	switch {
	case res.OK():
		parsed = ParseResponse(res.Text)
		if parsed.Found() == 0 {
			logger.Warn("Remote response had no usable sections, using templates",
				zap.String("outcome", llm.OutcomeMalformed.String()),
				zap.Int("attempts", res.Attempts),
				zap.Int("response_bytes", len(res.Text)),
			)
		}
	case llm.IsMissingCredential(res):
		logger.Debug("Remote generation disabled, using templates")
	default:
		logger.Warn("Remote generation failed, using templates",
			zap.String("outcome", res.Outcome.String()),
			zap.Int("attempts", res.Attempts),
			zap.Duration("latency", res.Latency),
			zap.Error(res.Err),
		)
	}

	result := g.assemble(input, analysis, parsed)
	generationsTotal.WithLabelValues(string(result.Source)).Inc()

	logger.Info("Fortune generated",
		zap.String("source", string(result.Source)),
		zap.String("element", string(analysis.Element)),
		zap.Int("remote_sections", parsed.Found()),
	)
	return result
}

// Fallback builds a fortune purely from templates.
func (g *Generator) Fallback(input models.UserInput, analysis models.ElementAnalysis) models.FortuneResult {
	input.Normalize()
	return g.assemble(input, analysis, Parsed{})
}

// assemble merges parsed remote content with templates and lucky items.
func (g *Generator) assemble(input models.UserInput, analysis models.ElementAnalysis, parsed Parsed) models.FortuneResult {
	found := parsed.Found()
	result := models.FortuneResult{
		Sections:   parsed.Sections,
		LuckyItems: parsed.Lucky,
	}

	switch {
	case found == len(models.SectionKeys()):
		result.Source = models.FortuneSourceAI
	case found == 0:
		result.Source = models.FortuneSourceTemplate
	default:
		result.Source = models.FortuneSourcePartial
	}

	g.mu.Lock()
	if found < len(models.SectionKeys()) {
		templates := bank.render(g.rng, input, analysis)
		for _, key := range result.Sections.Missing() {
			result.Sections.Set(key, templates.Get(key))
			if found > 0 {
				backfilledSections.WithLabelValues(string(key)).Inc()
			}
		}
	}
	if result.LuckyClub == "" {
		result.LuckyClub = g.catalog.Pick(g.rng, CategoryForAnalysis(analysis), input.Tier()).Name
	}
	g.mu.Unlock()

	result.LuckyHole = NormalizeLuckyHole(result.LuckyHole)
	if result.LuckyHole == "" {
		result.LuckyHole = LuckyHoleFor(analysis)
	}
	if result.LuckyItem == "" {
		result.LuckyItem = LuckyItemFor(analysis.Element)
	}

	return result
}

// Model returns the identifier of the remote model.
func (g *Generator) Model() string {
	return g.llm.Model()
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request ID used to tag log lines.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID set by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
