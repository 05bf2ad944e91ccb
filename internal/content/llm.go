package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/models"
)

const systemPrompt = "You are an expert presentation designer. Output only valid JSON."

var errNoSlides = errors.New("model returned no slides")

// ChatModel is the part of an eino chat model the generator needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
	Breaker  BreakerSettings
}

// NewOpenAIChatModel connects to an OpenAI compatible endpoint.
func NewOpenAIChatModel(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (ChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return cm, nil
}

// LLMGenerator asks a chat model for slide records. Calls go through a
// circuit breaker so a failing provider is not hammered.
type LLMGenerator struct {
	model   ChatModel
	breaker *gobreaker.CircuitBreaker
	cfg     LLMConfig
	logger  logger.Logger
}

func NewLLMGenerator(cm ChatModel, cfg LLMConfig, log logger.Logger) *LLMGenerator {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	log = log.With(map[string]interface{}{"component": "content", "provider": cfg.Provider})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "content-" + cfg.Provider,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &LLMGenerator{model: cm, breaker: breaker, cfg: cfg, logger: log}
}

func (g *LLMGenerator) Name() string { return g.cfg.Provider }

func (g *LLMGenerator) Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.model.Generate(ctx, buildMessages(topic, numSlides))
		if err != nil {
			return nil, err
		}
		return parseSlides(resp.Content)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, apperrors.NewCircuitOpenError("content-" + g.cfg.Provider)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.NewContentGenerationTimeoutError(g.cfg.Provider)
		default:
			return nil, apperrors.NewContentGenerationError(g.cfg.Provider, err)
		}
	}

	slides := normalize(result.([]models.Slide), topic, numSlides)
	g.logger.Debug("Generated slide content", map[string]interface{}{
		"topic":      topic,
		"requested":  numSlides,
		"generated":  len(slides),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return slides, nil
}

func buildMessages(topic string, numSlides int) []*schema.Message {
	var parts []string
	parts = append(parts, fmt.Sprintf("Create the content for a %d-slide presentation about %q.", numSlides, topic))
	parts = append(parts, "\nReturn a JSON array with one object per slide, in order. Each object has:")
	parts = append(parts, `- "title": short slide heading`)
	parts = append(parts, `- "points": array of 3 to 5 concise bullet points`)
	parts = append(parts, `- "layout": "title" for the first slide, "content" for all others`)
	parts = append(parts, `- "image_suggestion": optional subject for an illustrative image`)
	parts = append(parts, `- "citation": optional source for facts on the slide`)
	parts = append(parts, "\nOutput only the JSON array.")

	return []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: strings.Join(parts, "\n")},
	}
}

// parseSlides reads the first JSON array in the reply. Models often wrap it
// in prose or a fenced code block.
func parseSlides(reply string) ([]models.Slide, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model reply")
	}

	var slides []models.Slide
	if err := json.Unmarshal([]byte(reply[start:end+1]), &slides); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}
	if len(slides) == 0 {
		return nil, errNoSlides
	}
	return slides, nil
}
