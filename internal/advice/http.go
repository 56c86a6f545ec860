package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"pottytracker/internal/models"
)

const maxResponseBytes = 1 << 20

// HTTPConfig configures an advice service reached over plain HTTP.
// When TokenURL and ClientID are set requests carry an OAuth2 client
// credentials token; otherwise a non-empty APIKey is sent as a bearer token.
type HTTPConfig struct {
	Endpoint          string
	APIKey            string
	TokenURL          string
	ClientID          string
	ClientSecret      string
	RequestsPerMinute float64
}

// HTTPGateway POSTs the event history to an advice service and expects Advice JSON back
type HTTPGateway struct {
	endpoint string
	client   *http.Client
	loc      *time.Location
	limiter  *rate.Limiter
}

type httpAdviceRequest struct {
	Prompt string              `json:"prompt"`
	Events []models.PottyEvent `json:"events"`
}

func NewHTTPGateway(ctx context.Context, cfg HTTPConfig, loc *time.Location) *HTTPGateway {
	var client *http.Client
	switch {
	case cfg.TokenURL != "" && cfg.ClientID != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = cc.Client(ctx)
	case cfg.APIKey != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey})
		client = oauth2.NewClient(ctx, ts)
	default:
		client = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}

	return &HTTPGateway{
		endpoint: cfg.Endpoint,
		client:   client,
		loc:      loc,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (g *HTTPGateway) Advise(ctx context.Context, events []models.PottyEvent) (*models.Advice, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrGatewayUnavailable, err)
	}

	body, err := json.Marshal(httpAdviceRequest{Prompt: BuildPrompt(events, g.loc), Events: events})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayUnavailable, resp.StatusCode, bytes.TrimSpace(data))
	}
	return ParseAdvice(string(data))
}
