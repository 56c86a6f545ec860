package advice

import (
	"context"
	"fmt"
	"time"

	"pottytracker/internal/config"
)

// NewGateway builds the gateway selected by cfg.Provider. It returns nil for
// "none", which makes Advisor always serve Fallback.
func NewGateway(ctx context.Context, cfg config.AdviceConfig, loc *time.Location) (Gateway, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		gw, err := NewOpenAIGateway(LLMConfig{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			APIKey:            cfg.APIKey.Value(),
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, loc)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case "http":
		return NewHTTPGateway(ctx, HTTPConfig{
			Endpoint:          cfg.Endpoint,
			APIKey:            cfg.APIKey.Value(),
			TokenURL:          cfg.TokenURL,
			ClientID:          cfg.ClientID,
			ClientSecret:      cfg.ClientSecret.Value(),
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, loc), nil
	default:
		return nil, fmt.Errorf("unsupported advice provider: %s", cfg.Provider)
	}
}
