package llm

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoAPIKey is returned before any network call when the client was built
// without an API key. Its text is surfaced verbatim to API clients.
var ErrNoAPIKey = errors.New("LLM API key not configured")

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint. The
// base URL is configurable so tests and gateway deployments can point it at
// another host.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	logger  zerolog.Logger
}

func NewOpenAIClient(apiKey, model, baseURL string, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Complete sends one single-turn multimodal completion request. The image is
// embedded as a data URL next to the user text. Each call gets a fresh
// session ID used only to correlate log lines, never for conversation state.
func (o *OpenAIClient) Complete(ctx context.Context, r Request) (string, error) {
	if o.apiKey == "" {
		return "", ErrNoAPIKey
	}

	sessionID := uuid.NewString()

	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": r.System},
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": r.User},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/jpeg;base64," + r.ImageBase64,
						},
					},
				},
			},
		},
		"max_tokens": 4096,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	o.logger.Debug().
		Str("session_id", sessionID).
		Str("model", o.model).
		Msg("sending chat completion request")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api error: status %d: %s", resp.StatusCode, snippet(raw))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty llm response")
	}

	o.logger.Debug().
		Str("session_id", sessionID).
		Int("response_bytes", len(raw)).
		Msg("chat completion received")

	return result.Choices[0].Message.Content, nil
}

// snippet bounds provider error bodies so a huge HTML error page does not
// flood logs or API responses.
func snippet(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
