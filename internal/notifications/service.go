package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
)

const userAgent = "autovideo/0.1.0"

// Service is the notification surface the workflow uses.
type Service interface {
	NotifyRunStarted(ctx context.Context, count int) error
	NotifyRunCompleted(ctx context.Context, done, failed int, duration time.Duration) error
	NotifyItemFailed(ctx context.Context, scriptID, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy backed service, or a noop when no topic is
// configured.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		cfg:      cfg,
		endpoint: topicEndpoint(topic),
		client:   &http.Client{Timeout: timeout},
	}
}

// Bare topic names go to the public ntfy.sh instance; full URLs are used
// as-is for self hosted servers.
func topicEndpoint(topic string) string {
	if strings.Contains(topic, "://") {
		return topic
	}
	return "https://ntfy.sh/" + topic
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyItemFailed(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	cfg      config.Notifications
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, count int) error {
	if !n.cfg.RunStarted {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Autovideo - Run Started",
		message: fmt.Sprintf("Processing %d pending scripts", count),
		tags:    []string{"autovideo", "run", "started"},
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, done, failed int, duration time.Duration) error {
	if !n.cfg.RunCompleted {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	var data payload
	if failed == 0 {
		data = payload{
			title:   "Autovideo - Run Complete",
			message: fmt.Sprintf("Run complete: %d videos produced in %s", done, duration),
			tags:    []string{"autovideo", "run", "completed"},
		}
	} else {
		data = payload{
			title:    "Autovideo - Run Complete (with failures)",
			message:  fmt.Sprintf("Run complete: %d produced, %d failed in %s", done, failed, duration),
			tags:     []string{"autovideo", "run", "completed"},
			priority: "high",
		}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, scriptID, reason string) error {
	if !n.cfg.ItemFailures {
		return nil
	}
	scriptID = strings.TrimSpace(scriptID)
	message := fmt.Sprintf("Script %s failed", scriptID)
	if reason = strings.TrimSpace(reason); reason != "" {
		message += ": " + reason
	}
	return n.send(ctx, payload{
		title:   "Autovideo - Item Failed",
		message: message,
		tags:    []string{"autovideo", "item", "failed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.cfg.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" in ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Autovideo - Error",
		message:  builder.String(),
		tags:     []string{"autovideo", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Autovideo - Test",
		message:  "Notification system test",
		tags:     []string{"autovideo", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
