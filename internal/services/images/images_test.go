package images_test

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/ratelimit"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/images"
)

func testImagesConfig() config.Images {
	cfg := config.Default().Images
	cfg.AccountID = "acct-123"
	cfg.APIToken = "token-456"
	return cfg
}

func TestGenerateWritesImage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if got := r.Header.Get("Authorization"); got != "Bearer token-456" {
			t.Fatalf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte("\x89PNG fake image bytes"))
	}))
	defer server.Close()

	cfg := testImagesConfig()
	client := images.NewClient(cfg, 1080, 1920, nil,
		images.WithBaseURL(server.URL),
		images.WithSeedSource(func() int64 { return 42 }))
	outputPath := filepath.Join(t.TempDir(), "frames", "frame_0.png")

	if err := client.Generate(context.Background(), "a harbor at dawn", outputPath); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantPath := "/accounts/acct-123/ai/run/" + cfg.Model
	if gotPath != wantPath {
		t.Fatalf("request path = %q, want %q", gotPath, wantPath)
	}
	if gotBody["prompt"] != "a harbor at dawn" {
		t.Fatalf("prompt = %v", gotBody["prompt"])
	}
	if gotBody["negative_prompt"] != cfg.NegativePrompt {
		t.Fatalf("negative_prompt = %v", gotBody["negative_prompt"])
	}
	if gotBody["seed"] != float64(42) {
		t.Fatalf("seed = %v", gotBody["seed"])
	}
	if gotBody["width"] != float64(1080) || gotBody["height"] != float64(1920) {
		t.Fatalf("dimensions = %v x %v", gotBody["width"], gotBody["height"])
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "\x89PNG fake image bytes" {
		t.Fatalf("output bytes mismatch")
	}
}

func TestGenerateAcquiresLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer server.Close()

	// Budget of 1 per window: the second call has to wait, and a cancelled
	// context surfaces as the limiter's only error.
	limiter := ratelimit.New(1, time.Minute,
		ratelimit.WithSleep(func(ctx context.Context, _ time.Duration) error {
			return ctx.Err()
		}))
	client := images.NewClient(testImagesConfig(), 64, 64, limiter, images.WithBaseURL(server.URL))

	dir := t.TempDir()
	if err := client.Generate(context.Background(), "one", filepath.Join(dir, "a.png")); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Generate(ctx, "two", filepath.Join(dir, "b.png"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from limiter, got %v", err)
	}
}

func TestGenerateClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusForbidden, services.ErrConfiguration},
		{http.StatusTooManyRequests, services.ErrTransient},
		{http.StatusServiceUnavailable, services.ErrTransient},
		{http.StatusBadRequest, services.ErrPermanent},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]any{{"message": "nope"}},
			})
		}))
		client := images.NewClient(testImagesConfig(), 64, 64, nil, images.WithBaseURL(server.URL))
		err := client.Generate(context.Background(), "x", filepath.Join(t.TempDir(), "x.png"))
		server.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestGenerateMissingCredentials(t *testing.T) {
	cfg := testImagesConfig()
	cfg.APIToken = ""
	client := images.NewClient(cfg, 64, 64, nil)
	err := client.Generate(context.Background(), "x", filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestWritePlaceholder(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "frames", "fallback.png")
	if err := images.WritePlaceholder(outputPath, 32, 56); err != nil {
		t.Fatalf("WritePlaceholder: %v", err)
	}
	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("open placeholder: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 32 || bounds.Dy() != 56 {
		t.Fatalf("bounds = %v", bounds)
	}
	r, g, b, a := img.At(10, 10).RGBA()
	if r != 0 || g != 0 || b != 0 || a == 0 {
		t.Fatalf("pixel not opaque black: %d %d %d %d", r, g, b, a)
	}

	if err := images.WritePlaceholder(filepath.Join(t.TempDir(), "bad.png"), 0, 10); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error for invalid dimensions, got %v", err)
	}
}
