package image

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

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Remote implements the interface.
var _ driven.ImageGenerator = (*Remote)(nil)

// Remote defaults.
const (
	DefaultRemoteURL   = "https://api.openai.com/v1"
	DefaultRemoteModel = "dall-e-3"
	DefaultRemoteSize  = "1024x1024"
)

// RemoteConfig configures an OpenAI-compatible images API.
type RemoteConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

// Remote generates images through POST /images/generations.
type Remote struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	size    string
}

// NewRemote creates a remote backend. Without an API key every request
// fails with domain.ErrImageUnavailable.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRemoteURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultRemoteModel
	}
	if cfg.Size == "" {
		cfg.Size = DefaultRemoteSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Remote{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		size:    cfg.Size,
	}
}

// Name identifies the backend.
func (r *Remote) Name() string { return "remote:" + r.model }

type imagesRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate requests one image and decodes its base64 payload.
func (r *Remote) Generate(ctx context.Context, description string) ([]byte, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key for remote images", domain.ErrImageUnavailable)
	}

	body, err := json.Marshal(imagesRequest{
		Model:          r.model,
		Prompt:         description,
		N:              1,
		Size:           r.size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrExternalService, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimited
	}

	var ir imagesResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrExternalService, err)
	}
	if ir.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrExternalService, ir.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(ir.Data) == 0 {
		return nil, fmt.Errorf("%w: status %d, %d images", domain.ErrImageUnavailable, resp.StatusCode, len(ir.Data))
	}

	data, err := base64.StdEncoding.DecodeString(ir.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", domain.ErrExternalService, err)
	}
	return data, nil
}
