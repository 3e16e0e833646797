package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "demo-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

type scriptShape struct {
	Segments []struct {
		Name string `json:"nombre"`
	} `json:"segmentos"`
}

func TestGenerateSendsPromptAndSchema(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"segmentos":[{"nombre":"Intro"}]}`))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL + "/", Model: "demo-model", Temperature: 0.2, MaxOutputTokens: 1000},
		WithRetryMaxAttempts(0),
		WithResponseSchema(ResponseSchema{Name: "script", Schema: GenerateSchema[scriptShape]()}),
	)
	content, err := client.Generate(context.Background(), "Escribe un guion sobre ovnis")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	var parsed scriptShape
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || len(parsed.Segments) != 1 {
		t.Fatalf("unexpected content %q (%v)", content, err)
	}

	if captured["model"] != "demo-model" {
		t.Fatalf("unexpected model %v", captured["model"])
	}
	if captured["temperature"] != 0.2 {
		t.Fatalf("unexpected temperature %v", captured["temperature"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %v", captured["messages"])
	}
	if msg, _ := messages[0].(map[string]any); msg["role"] != "user" || msg["content"] != "Escribe un guion sobre ovnis" {
		t.Fatalf("unexpected message %v", messages[0])
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", captured["response_format"])
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("```json\n{\"ok\":true}\n```"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL + "/", Model: "m"}, WithRetryMaxAttempts(0))
	content, err := client.Generate(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestGenerateClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL + "/", Model: "m"}, WithRetryMaxAttempts(0))
	_, err := client.Generate(context.Background(), "ping")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGenerateRequiresKeyAndPrompt(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	if _, err := client.Generate(context.Background(), "hi"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without key, got %v", err)
	}
	client = NewClient(Config{APIKey: "k", Model: "m"})
	if _, err := client.Generate(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank prompt, got %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var target struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("Here you go:\n{\"ok\": true}\nThanks", &target); err != nil || !target.OK {
		t.Fatalf("expected prose-wrapped JSON to decode, got %v", err)
	}
	if err := DecodeLLMJSON("", &target); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
