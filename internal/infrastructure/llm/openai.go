package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/driftchat/drift/internal/core/ports"
)

// ErrAssistantUnavailable is returned while the circuit is open: the
// provider has been failing and calls are short-circuited until the
// cool-down elapses.
var ErrAssistantUnavailable = errors.New("assistant is temporarily unavailable")

// Config holds the OpenAI client configuration.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClient implements LLMClient against the OpenAI chat completions API,
// behind a circuit breaker so a degraded provider cannot pile up in-flight
// requests.
type OpenAIClient struct {
	client  *openai.Client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewOpenAIClient(cfg Config, logger *logrus.Logger) ports.LLMClient {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("llm circuit breaker state changed")
		},
	})

	return &OpenAIClient{
		client:  openai.NewClient(cfg.APIKey),
		cfg:     cfg,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, turns []ports.ChatTurn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}

	result, err := c.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       c.cfg.Model,
			Messages:    messages,
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("completion returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrAssistantUnavailable
		}
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return result.(string), nil
}
