package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/config"
)

const userAgent = "reelsmith/0.1"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyTopicCompleted(ctx context.Context, topic, finalFile string) error
	NotifyTopicFailed(ctx context.Context, topic string, err error, willRetry bool) error
	NotifyBatchCompleted(ctx context.Context, processed, failed, remaining int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyTopicCompleted(ctx context.Context, topic, finalFile string) error {
	message := fmt.Sprintf("Reel ready: %s", strings.TrimSpace(topic))
	if finalFile = strings.TrimSpace(finalFile); finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	return n.send(ctx, payload{
		title:   "reelsmith - Reel Complete",
		message: message,
		tags:    []string{"white_check_mark", "reelsmith", "completed"},
	})
}

func (n *ntfyService) NotifyTopicFailed(ctx context.Context, topic string, err error, willRetry bool) error {
	var builder strings.Builder
	builder.WriteString("Failed: ")
	builder.WriteString(strings.TrimSpace(topic))
	builder.WriteString("\n")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	data := payload{
		title:   "reelsmith - Reel Failed",
		message: builder.String(),
		tags:    []string{"warning", "reelsmith", "requeued"},
	}
	if !willRetry {
		data.message += "\nNo attempts left; run 'reelsmith topics retry' to try again."
		data.tags = []string{"x", "reelsmith", "failed"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, failed, remaining int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "reelsmith - Batch Complete"
	message := fmt.Sprintf("%d reels produced in %s; %d topics pending", processed, duration, remaining)
	if failed > 0 {
		title = "reelsmith - Batch Complete (with errors)"
		message = fmt.Sprintf("%d succeeded, %d failed in %s; %d topics pending", processed, failed, duration, remaining)
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"reelsmith", "batch", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "reelsmith - Test",
		message:  "Notification system test",
		tags:     []string{"test_tube", "reelsmith"},
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
	if data.priority != "" && data.priority != "default" {
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

type noopService struct{}

func (noopService) NotifyTopicCompleted(context.Context, string, string) error   { return nil }
func (noopService) NotifyTopicFailed(context.Context, string, error, bool) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }
