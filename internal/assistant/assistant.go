// Package assistant talks to an OpenAI-compatible chat-completions endpoint
// and falls back to canned advice when no API key is configured.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moneymap/internal/log"
)

const (
	DefaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel  = "llama-3.1-8b-instant"

	SystemPrompt = "You are a helpful assistant for WomenPreneur, a platform empowering women entrepreneurs. " +
		"You help users with questions about entrepreneurship, business, schemes, courses, mentorship, and platform features. " +
		"Be friendly, supportive, and provide practical advice. Keep responses concise and helpful."

	FallbackReply = "Sorry, I could not generate a response."

	temperature = 0.7
	maxTokens   = 500
)

var ErrEmptyHistory = errors.New("empty conversation")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Config struct {
	APIKey     string
	APIURL     string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

func New(cfg Config, logger *log.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		logger:     logger.WithComponent(log.ComponentAssistant),
	}
}

// Enabled reports whether Reply will call the remote endpoint.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Reply returns the model's answer to the conversation so far. Without an
// API key it answers the last user message with CannedReply.
func (c *Client) Reply(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}
	if !c.Enabled() {
		return CannedReply(lastUserMessage(history), ""), nil
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    append([]Message{{Role: RoleSystem, Content: SystemPrompt}}, history...),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Assistant request failed", log.FieldError, err)
		return "", fmt.Errorf("call assistant: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Message != "" {
			apiErr.Message = er.Error.Message
		}
		c.logger.ErrorContext(ctx, "Assistant returned an error",
			"status", resp.StatusCode, log.FieldError, apiErr.Message)
		return "", apiErr
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return FallbackReply, nil
	}
	return cr.Choices[0].Message.Content, nil
}

func lastUserMessage(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return history[len(history)-1].Content
}

// CannedReply picks offline advice by keyword. focus is the user's line of
// business and may be empty.
func CannedReply(message, focus string) string {
	m := strings.ToLower(message)
	focus = strings.ToLower(strings.TrimSpace(focus))

	switch {
	case strings.Contains(m, "marketing"):
		return fmt.Sprintf("For a %s business, I recommend focusing on Instagram Reels and local community groups. "+
			"Have you tried setting up a Google Business profile yet?", orDefault(focus, "new"))
	case strings.Contains(m, "funding"), strings.Contains(m, "money"), strings.Contains(m, "loan"):
		return fmt.Sprintf("Since you mentioned %s, the Mudra Loan (Shishu category) seems perfect for your current scale. "+
			"You can apply for up to ₹50,000 with minimal paperwork. Would you like me to find the application link?", focus)
	case strings.Contains(m, "logo"), strings.Contains(m, "design"):
		return fmt.Sprintf("Clean and minimalist designs are trending. For %s, I'd suggest using a palette of soft pastels "+
			"or bold professional blues. You can use our Storefront Builder to experiment with different themes!", focus)
	default:
		return fmt.Sprintf("That's a great question about %s. Given your focus on %s, I'd suggest checking out the "+
			"'Digital Marketing' course in our SkillUp section. It covers exactly what you need!",
			message, orDefault(focus, "entrepreneurship"))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
