package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// Result is the moderation verdict for a submitted deal.
type Result struct {
	IsSpam bool   `json:"is_spam"`
	Reason string `json:"reason"`
}

// Checker screens user-submitted deal content before it reaches the feed.
// Implementations must fail open: when the upstream model is unavailable the
// submission goes through.
type Checker interface {
	CheckDeal(ctx context.Context, title, description, restaurantName string) (Result, error)
}

// NewChecker builds a Gemini-backed checker, or a no-op one when no API key is
// configured.
func NewChecker(ctx context.Context, cfg config.ModerationConfig, logg *logger.Logger) (Checker, error) {
	if cfg.GeminiAPIKey == "" {
		if logg != nil {
			logg.Warn(ctx, "moderation disabled: no gemini api key configured")
		}
		return noopChecker{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &geminiChecker{
		client: client,
		model:  cfg.Model,
		logg:   logg,
	}, nil
}

type noopChecker struct{}

func (noopChecker) CheckDeal(context.Context, string, string, string) (Result, error) {
	return Result{}, nil
}

type geminiChecker struct {
	client *genai.Client
	model  string
	logg   *logger.Logger
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_spam": {
			Type:        genai.TypeBoolean,
			Description: "True if the submission is spam, an advertisement unrelated to food deals, gibberish, or abusive content.",
		},
		"reason": {
			Type:        genai.TypeString,
			Description: "One short sentence explaining the verdict.",
		},
	},
	Required: []string{"is_spam", "reason"},
}

// CheckDeal asks Gemini whether the submission looks like spam. Any upstream
// failure logs a warning and lets the deal through.
func (c *geminiChecker) CheckDeal(ctx context.Context, title, description, restaurantName string) (Result, error) {
	prompt := fmt.Sprintf(`You are moderating submissions for a Berlin food deals community.
A user submitted this deal:
Title: %q
Description: %q
Restaurant: %q

Decide whether the submission is spam. Legitimate submissions describe a
discounted food or drink offer at a real venue. Spam includes unrelated
advertising, scams, gibberish, and abusive content.

Output JSON adhering to the schema.`, title, description, restaurantName)

	temperature := float32(0.1)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("moderation check failed open: %v", err))
		}
		return Result{}, nil
	}

	return parseVerdict(ctx, resp.Text(), c.logg)
}

func parseVerdict(ctx context.Context, text string, logg *logger.Logger) (Result, error) {
	jsonStr := strings.TrimSpace(text)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")

	var result Result
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		if logg != nil {
			logg.Warn(ctx, fmt.Sprintf("moderation verdict unparseable, failing open: %v", err))
		}
		return Result{}, nil
	}
	return result, nil
}
