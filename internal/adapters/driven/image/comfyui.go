package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure ComfyUI implements the interface.
var _ driven.ImageGenerator = (*ComfyUI)(nil)

// ComfyUI defaults.
const (
	DefaultComfyUIURL   = "http://localhost:8188"
	DefaultCheckpoint   = "flux1-schnell.safetensors"
	DefaultPollInterval = time.Second
	defaultSize         = 1024
	negativePrompt      = "text, watermark"
)

// ComfyUIConfig configures the ComfyUI backend.
type ComfyUIConfig struct {
	// BaseURL is the ComfyUI server (default: http://localhost:8188).
	BaseURL string

	// Checkpoint is the model checkpoint file name.
	Checkpoint string

	// PollInterval is the delay between history polls (default: 1s).
	PollInterval time.Duration
}

// ComfyUI queues a text-to-image workflow on a ComfyUI server, polls its
// history until the image is saved, then downloads it.
type ComfyUI struct {
	client     *http.Client
	baseURL    string
	checkpoint string
	poll       time.Duration
	clientID   string
}

// NewComfyUI creates a ComfyUI backend.
func NewComfyUI(cfg ComfyUIConfig) *ComfyUI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultComfyUIURL
	}
	if cfg.Checkpoint == "" {
		cfg.Checkpoint = DefaultCheckpoint
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &ComfyUI{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		checkpoint: cfg.Checkpoint,
		poll:       cfg.PollInterval,
		clientID:   uuid.NewString(),
	}
}

// Name identifies the backend.
func (c *ComfyUI) Name() string { return "comfyui" }

type queueResponse struct {
	PromptID string `json:"prompt_id"`
}

type outputImage struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

type historyEntry struct {
	Outputs map[string]struct {
		Images []outputImage `json:"images"`
	} `json:"outputs"`
	Status struct {
		StatusStr string `json:"status_str"`
		Completed bool   `json:"completed"`
	} `json:"status"`
}

// Generate renders description. The caller's context bounds the wait.
func (c *ComfyUI) Generate(ctx context.Context, description string) ([]byte, error) {
	promptID, err := c.queue(ctx, description)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		img, done, err := c.check(ctx, promptID)
		if err != nil {
			return nil, err
		}
		if done {
			return c.download(ctx, img)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("comfyui: %w: %w", domain.ErrExternalService, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *ComfyUI) queue(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":    c.workflow(description),
		"client_id": c.clientID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal workflow: %w", err)
	}

	var qr queueResponse
	if err := c.do(ctx, http.MethodPost, "/prompt", bytes.NewReader(body), &qr); err != nil {
		return "", err
	}
	if qr.PromptID == "" {
		return "", fmt.Errorf("comfyui: %w: no prompt id", domain.ErrExternalService)
	}
	return qr.PromptID, nil
}

// check reports whether the prompt finished and which image it saved.
func (c *ComfyUI) check(ctx context.Context, promptID string) (outputImage, bool, error) {
	var history map[string]historyEntry
	if err := c.do(ctx, http.MethodGet, "/history/"+url.PathEscape(promptID), http.NoBody, &history); err != nil {
		return outputImage{}, false, err
	}
	entry, ok := history[promptID]
	if !ok {
		return outputImage{}, false, nil
	}
	if entry.Status.StatusStr == "error" {
		return outputImage{}, false, fmt.Errorf("comfyui: %w: workflow failed", domain.ErrImageUnavailable)
	}
	for _, out := range entry.Outputs {
		if len(out.Images) > 0 {
			return out.Images[0], true, nil
		}
	}
	if entry.Status.Completed {
		return outputImage{}, false, fmt.Errorf("comfyui: %w: workflow produced no image", domain.ErrImageUnavailable)
	}
	return outputImage{}, false, nil
}

func (c *ComfyUI) download(ctx context.Context, img outputImage) ([]byte, error) {
	q := url.Values{}
	q.Set("filename", img.Filename)
	q.Set("subfolder", img.Subfolder)
	q.Set("type", img.Type)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("comfyui: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("comfyui: %w: view returned status %d", domain.ErrExternalService, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *ComfyUI) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("comfyui: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("comfyui: %w: %s %s: status %d: %s", domain.ErrExternalService, method, path, resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("comfyui: %w: decode %s: %w", domain.ErrExternalService, path, err)
	}
	return nil
}

// workflow is the API-format text-to-image graph.
func (c *ComfyUI) workflow(description string) map[string]any {
	node := func(class string, inputs map[string]any) map[string]any {
		return map[string]any{"class_type": class, "inputs": inputs}
	}
	return map[string]any{
		"3": node("KSampler", map[string]any{
			"seed":         time.Now().UnixNano() & 0xFFFFFFFFFFFF,
			"steps":        20,
			"cfg":          8,
			"sampler_name": "euler",
			"scheduler":    "normal",
			"denoise":      1,
			"model":        []any{"4", 0},
			"positive":     []any{"6", 0},
			"negative":     []any{"7", 0},
			"latent_image": []any{"5", 0},
		}),
		"4": node("CheckpointLoaderSimple", map[string]any{"ckpt_name": c.checkpoint}),
		"5": node("EmptyLatentImage", map[string]any{"width": defaultSize, "height": defaultSize, "batch_size": 1}),
		"6": node("CLIPTextEncode", map[string]any{"text": description, "clip": []any{"4", 1}}),
		"7": node("CLIPTextEncode", map[string]any{"text": negativePrompt, "clip": []any{"4", 1}}),
		"8": node("VAEDecode", map[string]any{"samples": []any{"3", 0}, "vae": []any{"4", 2}}),
		"9": node("SaveImage", map[string]any{"filename_prefix": "tutorforge", "images": []any{"8", 0}}),
	}
}
