package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var requests []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyTopicCompleted(context.Background(), "x", "/out/x.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyTopicCompleted(ctx, "El caso Roswell", "/out/el-caso-roswell.mp4"); err != nil {
		t.Fatalf("NotifyTopicCompleted: %v", err)
	}
	if err := svc.NotifyTopicFailed(ctx, "La isla", errors.New("insufficient assets"), true); err != nil {
		t.Fatalf("NotifyTopicFailed: %v", err)
	}
	if err := svc.NotifyTopicFailed(ctx, "La isla", errors.New("insufficient assets"), false); err != nil {
		t.Fatalf("NotifyTopicFailed: %v", err)
	}
	if err := svc.NotifyBatchCompleted(ctx, 4, 1, 7, 95*time.Second); err != nil {
		t.Fatalf("NotifyBatchCompleted: %v", err)
	}

	got := *requests
	if len(got) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(got))
	}
	if got[0].title != "reelsmith - Reel Complete" || got[0].body != "Reel ready: El caso Roswell\nFile: /out/el-caso-roswell.mp4" {
		t.Fatalf("unexpected completion payload %+v", got[0])
	}
	if got[1].priority != "" || !strings.Contains(got[1].tags, "requeued") {
		t.Fatalf("unexpected requeue payload %+v", got[1])
	}
	if got[2].priority != "high" || !strings.Contains(got[2].body, "reelsmith topics retry") {
		t.Fatalf("unexpected final failure payload %+v", got[2])
	}
	if got[3].title != "reelsmith - Batch Complete (with errors)" || got[3].body != "4 succeeded, 1 failed in 1m35s; 7 topics pending" {
		t.Fatalf("unexpected batch payload %+v", got[3])
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if err := notifications.NewService(&cfg).TestNotification(context.Background()); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
