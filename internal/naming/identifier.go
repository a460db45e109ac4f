// Package naming drives extracted sprites through the external identify
// collaborator. The collaborator may be slow, rate-limited, or down; its
// failures never surface past this package.
package naming

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FallbackName is used when the collaborator fails for a sprite.
const FallbackName = "unknown_item"

// Identifier maps one sprite's encoded image to a short snake_case name.
type Identifier interface {
	Identify(ctx context.Context, imageBytes []byte) (string, error)
}

// HTTPIdentifier calls a remote identify endpoint.
type HTTPIdentifier struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPIdentifier builds a client for the given endpoint. The timeout
// bounds a single call; a hung call stalls only its own batch.
func NewHTTPIdentifier(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPIdentifier {
	return &HTTPIdentifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type identifyRequest struct {
	Image string `json:"image"` // base64 PNG
}

type identifyResponse struct {
	Name string `json:"name"`
}

// Identify posts the image and returns the suggested name.
func (h *HTTPIdentifier) Identify(ctx context.Context, imageBytes []byte) (string, error) {
	body, err := json.Marshal(identifyRequest{Image: base64.StdEncoding.EncodeToString(imageBytes)})
	if err != nil {
		return "", fmt.Errorf("naming: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("naming: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("naming: identify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		h.logger.Warn("identify returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.Duration("took", time.Since(start)),
			zap.ByteString("body", b))
		return "", fmt.Errorf("naming: identify status %d", resp.StatusCode)
	}

	var out identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("naming: decode response: %w", err)
	}
	if strings.TrimSpace(out.Name) == "" {
		return "", fmt.Errorf("naming: empty name in response")
	}

	h.logger.Debug("identify ok",
		zap.String("name", out.Name),
		zap.Duration("took", time.Since(start)))
	return strings.TrimSpace(out.Name), nil
}
