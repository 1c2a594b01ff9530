package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OpenAIClient implements Client on top of the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client for the given model. baseURL may be empty to
// use the default API endpoint.
func NewOpenAI(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (Response, error) {
	tracer := otel.Tracer("salestrainer")
	ctx, span := tracer.Start(ctx, "openai_api_call")
	defer span.End()

	start := time.Now()

	oaMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		oaMsgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: oaMsgs,
	})
	if err != nil {
		return Response{}, &CompletionError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return Response{}, &CompletionError{Err: fmt.Errorf("empty response from OpenAI")}
	}

	meter := otel.Meter("salestrainer")
	if histogram, err := meter.Float64Histogram(
		"llm.request.duration",
		metric.WithDescription("Completion request duration in milliseconds"),
	); err == nil {
		histogram.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
	recordUsage(ctx, meter, resp.Usage)

	return Response{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// recordUsage records token usage counters from a completion response.
func recordUsage(ctx context.Context, meter metric.Meter, usage openai.Usage) {
	counters := map[string]int{
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
	}
	for key, value := range counters {
		counter, err := meter.Int64Counter(
			fmt.Sprintf("llm.usage.%s", key),
			metric.WithDescription(fmt.Sprintf("LLM usage metric: %s", key)),
		)
		if err != nil {
			continue
		}
		counter.Add(ctx, int64(value))
	}
}
