package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mise-server/internal/shared"
)

const proxyModelName = "chat-proxy"

// proxyClient talks to the completion relay: it POSTs {"prompt": ...} and
// receives {"reply": ...} on success or {"error": ...} with a non-2xx status.
// The relay owns vendor authentication and model selection.
type proxyClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewProxyClient creates a TextGenerator backed by the completion relay.
func NewProxyClient(endpoint string) TextGenerator {
	return &proxyClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GenerateContent sends a prompt to the relay and returns the reply text.
func (c *proxyClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	reqBody := map[string]string{"prompt": prompt}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var errPayload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(bodyBytes, &errPayload); err == nil && errPayload.Error != "" {
			return ContentResponse{}, fmt.Errorf("relay error: status=%d message=%s", resp.StatusCode, errPayload.Error)
		}
		return ContentResponse{}, fmt.Errorf("relay error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var proxyResp struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&proxyResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if proxyResp.Reply == "" {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	// The relay does not report token usage, only the model label survives.
	return ContentResponse{
		Content: proxyResp.Reply,
		Usage:   shared.TokenUsage{Model: proxyModelName},
	}, nil
}
