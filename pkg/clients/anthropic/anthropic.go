package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-3-haiku-20240307"
	maxTokens      = 512
)

// ErrEmptyResponse is returned when the API answers without any content block.
var ErrEmptyResponse = errors.New("empty response from ai")

// ReminderInput describes the household routine the reminders are written for.
type ReminderInput struct {
	DeliverySchedule         string `json:"deliverySchedule"`
	ConsumptionPatterns      string `json:"consumptionPatterns"`
	DaysWithoutDeliveryMilk  int    `json:"daysWithoutDeliveryMilk"`
	DaysWithoutDeliveryWater int    `json:"daysWithoutDeliveryWater"`
}

// Reminders holds one short message per reorderable kind.
type Reminders struct {
	MilkReorderReminder  string `json:"milkReorderReminder"`
	WaterReorderReminder string `json:"waterReorderReminder"`
}

// Client generates reorder reminders.
type Client interface {
	GenerateReorderReminders(ctx context.Context, input ReminderInput) (Reminders, error)
}

// Option customizes the client.
type Option func(*anthropicClient)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(c *anthropicClient) {
		c.httpClient.SetBaseURL(strings.TrimSuffix(url, "/"))
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string, opts ...Option) Client {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(20 * time.Second)

	c := &anthropicClient{httpClient: client, model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You are a helpful assistant that generates reorder reminders for milk and water based on a household's delivery schedule and consumption patterns. You also consider the schedules for house cleaning and the gardener.

Write one reminder for milk and one for water. Each reminder must be concise and actionable.

Your output must be ONLY a JSON object with this structure:
{
  "milkReorderReminder": "reminder message for reordering milk",
  "waterReorderReminder": "reminder message for reordering water"
}
Escape newlines inside strings (use \n).`

func (c *anthropicClient) GenerateReorderReminders(ctx context.Context, input ReminderInput) (Reminders, error) {
	userPrompt := fmt.Sprintf(`Delivery Schedule: %s
Consumption Patterns: %s
Days Without Milk Delivery: %d
Days Without Water Delivery: %d`,
		input.DeliverySchedule,
		input.ConsumptionPatterns,
		input.DaysWithoutDeliveryMilk,
		input.DaysWithoutDeliveryWater)

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: userPrompt},
			// Prefill the assistant turn so the answer starts as a JSON object.
			{Role: "assistant", Content: "{"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return Reminders{}, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return Reminders{}, fmt.Errorf("anthropic api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return Reminders{}, ErrEmptyResponse
	}

	responseText := completePrefill(respBody.Content[0].Text)

	var reminders Reminders
	if err := json.Unmarshal([]byte(responseText), &reminders); err != nil {
		return Reminders{}, fmt.Errorf("failed to unmarshal ai response: %w", err)
	}
	if reminders.MilkReorderReminder == "" && reminders.WaterReorderReminder == "" {
		return Reminders{}, ErrEmptyResponse
	}
	return reminders, nil
}

// completePrefill restores the "{" sent as the assistant prefill unless the
// model repeated it.
func completePrefill(text string) string {
	text = extractJSON(text)
	if !strings.HasPrefix(text, "{") {
		text = "{" + text
	}
	return text
}

// extractJSON strips markdown fences the model sometimes wraps around its answer.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
