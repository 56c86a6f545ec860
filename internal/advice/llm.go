package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"pottytracker/internal/models"
)

// LLMGateway asks a chat model for advice through langchaingo
type LLMGateway struct {
	model   llms.Model
	loc     *time.Location
	limiter *rate.Limiter
}

// LLMConfig configures an OpenAI-compatible endpoint
type LLMConfig struct {
	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerMinute float64
}

// NewOpenAIGateway builds an LLMGateway backed by an OpenAI-compatible API
// Local OpenAI-compatible servers ignore the token, but the client requires one.
func NewOpenAIGateway(cfg LLMConfig, loc *time.Location) (*LLMGateway, error) {
	token := cfg.APIKey
	if token == "" {
		token = "unused"
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewLLMGateway(llm, loc, cfg.RequestsPerMinute), nil
}

// NewLLMGateway wraps any langchaingo model. requestsPerMinute <= 0 disables throttling.
func NewLLMGateway(model llms.Model, loc *time.Location, requestsPerMinute float64) *LLMGateway {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(requestsPerMinute / 60)
	}
	return &LLMGateway{
		model:   model,
		loc:     loc,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (g *LLMGateway) Advise(ctx context.Context, events []models.PottyEvent) (*models.Advice, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrGatewayUnavailable, err)
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, BuildPrompt(events, g.loc),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return ParseAdvice(text)
}
