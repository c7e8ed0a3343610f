// Package ai is the AI credibility adapter: it asks a language model for a
// structured misinformation judgment on a text blob. A failed call yields an
// absent judgment, never a false/zero one.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/veriscan/backend/pkg/circuitbreaker"
	"github.com/veriscan/backend/pkg/logger"
	"github.com/veriscan/backend/pkg/retry"
)

// Judgment carries the adapter's structured output. Nil Flag/Confidence mean
// the adapter produced no signal.
type Judgment struct {
	Flag       *bool
	Confidence *int
	Reasoning  string
}

type Client struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, timeoutSec int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.NewCircuitBreaker("ai-credibility", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    2,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	if timeoutSec <= 0 {
		timeoutSec = 8
	}

	logger.Info("AI credibility client initialized", zap.String("model", model))

	return &Client{
		client:      client,
		model:       model,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

const systemPrompt = `You analyze content for factual errors and misinformation signals.
Respond ONLY with a JSON object with these fields:
- misinformation_flag: boolean, true if the content likely contains misinformation
- confidence: integer 0-100, how confident you are in the flag
- reasoning: one or two sentences explaining the judgment`

// Judge runs one structured credibility check. The returned Judgment always
// has both Flag and Confidence set on success.
func (c *Client) Judge(ctx context.Context, content string) (Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Content to analyze: %q", content),
		},
	}

	var judgment Judgment

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: 0,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			parsed, err := parseJudgment(resp.Choices[0].Message.Content)
			if err != nil {
				return err
			}
			judgment = parsed
			return nil
		})
	})

	if err != nil {
		return Judgment{}, err
	}

	logger.Debug("AI judgment produced",
		zap.Bool("flag", *judgment.Flag),
		zap.Int("confidence", *judgment.Confidence),
	)

	return judgment, nil
}

func parseJudgment(content string) (Judgment, error) {
	// Models sometimes wrap JSON in code fences.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw struct {
		MisinformationFlag *bool  `json:"misinformation_flag"`
		Confidence         *int   `json:"confidence"`
		Reasoning          string `json:"reasoning"`
	}

	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Judgment{}, fmt.Errorf("failed to parse judgment response: %w", err)
	}
	if raw.MisinformationFlag == nil || raw.Confidence == nil {
		return Judgment{}, fmt.Errorf("judgment response missing required fields")
	}

	return Judgment{
		Flag:       raw.MisinformationFlag,
		Confidence: raw.Confidence,
		Reasoning:  raw.Reasoning,
	}, nil
}
