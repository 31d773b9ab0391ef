package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client error kinds. The HTTP layer maps these to response statuses.
var (
	// ErrNotConfigured means no usable API key is set
	ErrNotConfigured = errors.New("chat client not configured")

	// ErrTimeout means the provider did not answer within the deadline
	ErrTimeout = errors.New("inference provider timed out")

	// ErrConnection means the provider could not be reached at all
	ErrConnection = errors.New("could not reach inference provider")
)

// ProviderError is a non-200 response from the inference provider
type ProviderError struct {
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("inference provider returned status %d: %s", e.StatusCode, e.Detail)
}

// FallbackResponse is returned when the provider generates nothing usable
const FallbackResponse = "I'm having trouble generating a response. Could you rephrase your question?"

// placeholderAPIKey is the value left in .env templates; treat it as unset
const placeholderAPIKey = "your_hf_token_here"

// Client calls the Hugging Face Inference API for text generation
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// ClientConfig holds chat client configuration
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// DefaultClientConfig returns the default provider settings
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:   "mistralai/Mistral-7B-Instruct-v0.2",
		BaseURL: "https://api-inference.huggingface.co",
		Timeout: 30 * time.Second,
	}
}

// NewClient creates a chat client. An empty API key is allowed; the client
// reports itself unconfigured and every Generate call fails cleanly.
func NewClient(config ClientConfig) *Client {
	defaults := DefaultClientConfig()
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	return &Client{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether a usable API key is set
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.model
}

// Endpoint returns the provider base URL
func (c *Client) Endpoint() string {
	return c.baseURL
}

// Inference API request/response structures
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// Generate sends a prompt to the provider and returns the generated text.
// An empty generation returns FallbackResponse rather than an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens:   400,
			Temperature:    0.7,
			TopP:           0.95,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal inference request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(body)),
		}
	}

	// The provider answers with a list of generations; some deployments
	// return a single object instead.
	text := ""
	var list []generatedText
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) > 0 {
			text = list[0].GeneratedText
		}
	} else {
		var single generatedText
		if err := json.Unmarshal(body, &single); err != nil {
			return "", fmt.Errorf("failed to decode provider response: %w", err)
		}
		text = single.GeneratedText
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackResponse, nil
	}
	return text, nil
}
