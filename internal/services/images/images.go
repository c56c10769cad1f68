// Package images generates still frames through the Cloudflare Workers AI
// API. Every request passes through a shared sliding window rate limiter so
// bulk generation never exceeds the account's per-minute quota. When
// generation fails beyond repair the caller can substitute a solid black
// placeholder frame so assembly still has something to animate.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/fileutil"
	"github.com/saadbenchakroun/auto-video-generator/internal/ratelimit"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

const (
	defaultBaseURL     = "https://api.cloudflare.com/client/v4"
	defaultHTTPTimeout = 120 * time.Second
	maxSeed            = 1 << 31
)

// Client generates images through the Cloudflare Workers AI run endpoint.
type Client struct {
	cfg        config.Images
	width      int
	height     int
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	seed       func() int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithSeedSource overrides how request seeds are drawn (used by tests).
func WithSeedSource(seed func() int64) Option {
	return func(c *Client) {
		if seed != nil {
			c.seed = seed
		}
	}
}

// NewClient constructs a client. limiter gates every outbound request; pass
// the one shared across the whole run so concurrent workers count against a
// single quota.
func NewClient(cfg config.Images, width, height int, limiter *ratelimit.Limiter, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		width:      width,
		height:     height,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		seed:       func() int64 { return rand.Int63n(maxSeed) },
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type runRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	NumSteps       int    `json:"num_steps,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
}

type runErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Generate produces one image for prompt and writes it to outputPath. The
// request carries the configured negative prompt and a random seed.
func (c *Client) Generate(ctx context.Context, prompt, outputPath string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return services.Wrap(services.ErrPermanent, "images", "generate", "prompt required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrPermanent, "images", "generate", "output path required", nil)
	}
	if strings.TrimSpace(c.cfg.AccountID) == "" || strings.TrimSpace(c.cfg.APIToken) == "" {
		return services.Wrap(services.ErrConfiguration, "images", "generate", "cloudflare credentials required", nil)
	}
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
	}

	payload := runRequest{
		Prompt:         prompt,
		NegativePrompt: c.cfg.NegativePrompt,
		Width:          c.width,
		Height:         c.height,
		NumSteps:       c.cfg.Steps,
		Seed:           c.seed(),
	}
	data, err := c.requestImage(ctx, payload)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return services.Wrap(services.ErrTransient, "images", "generate", "ensure output dir", err)
	}
	if err := fileutil.WriteFileAtomic(outputPath, data); err != nil {
		return services.Wrap(services.ErrTransient, "images", "generate", "write image", err)
	}
	return nil
}

func (c *Client) requestImage(ctx context.Context, payload runRequest) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/ai/run/%s",
		strings.TrimRight(c.baseURL, "/"), c.cfg.AccountID, c.cfg.Model)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "images", "generate", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "images", "generate", "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "images", "generate", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "images", "generate", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrTransient, "images", "generate", "empty image payload", nil)
	}
	return body, nil
}

func classifyStatus(status int, body []byte) error {
	detail := apiErrorDetail(body)
	message := fmt.Sprintf("http %d", status)
	if detail != "" {
		message += ": " + detail
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "images", "generate", message, nil)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, "images", "generate", message, nil)
	default:
		return services.Wrap(services.ErrPermanent, "images", "generate", message, nil)
	}
}

func apiErrorDetail(body []byte) string {
	var parsed runErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	messages := make([]string, 0, len(parsed.Errors))
	for _, apiErr := range parsed.Errors {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, "; ")
}
