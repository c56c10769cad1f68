package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPromptGeneratorOnePromptPerSegment(t *testing.T) {
	var mu sync.Mutex
	var segments []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		user := req.Messages[1].Content
		mu.Lock()
		segments = append(segments, user)
		n := len(segments)
		mu.Unlock()
		json.NewEncoder(w).Encode(completionBody(fmt.Sprintf(`{"detailed_prompt":"scene %d"}`, n)))
	}))
	defer server.Close()

	gen := NewPromptGenerator(NewClient(testLLMConfig(server.URL)), "", 2)
	script := strings.Repeat("the harbor wakes slowly. ", 8)
	prompts, err := gen.Generate(context.Background(), script, 4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(prompts) != 4 {
		t.Fatalf("len(prompts) = %d, want 4", len(prompts))
	}
	for i, prompt := range prompts {
		if !strings.HasPrefix(prompt, "scene ") {
			t.Fatalf("prompt[%d] = %q", i, prompt)
		}
	}
	if len(segments) != 4 {
		t.Fatalf("requests = %d, want 4", len(segments))
	}
}

func TestPromptGeneratorPartialFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		fail := calls == 2
		mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(completionBody(`{"detailed_prompt":"a scene"}`))
	}))
	defer server.Close()

	gen := NewPromptGenerator(NewClient(testLLMConfig(server.URL), WithSleeper(func(time.Duration) {})), "", 1)
	prompts, err := gen.Generate(context.Background(), strings.Repeat("words and more words. ", 6), 3)
	if err == nil {
		t.Fatal("expected an error describing the failed segment")
	}
	if len(prompts) != 3 {
		t.Fatalf("len(prompts) = %d, want 3", len(prompts))
	}
	empty := 0
	for _, prompt := range prompts {
		if prompt == "" {
			empty++
		}
	}
	if empty != 1 {
		t.Fatalf("empty slots = %d, want exactly 1", empty)
	}
}

func TestPromptGeneratorShortScript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionBody(`{"detailed_prompt":"tiny scene"}`))
	}))
	defer server.Close()

	gen := NewPromptGenerator(NewClient(testLLMConfig(server.URL)), "", 4)
	prompts, err := gen.Generate(context.Background(), "hi", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(prompts) != 3 {
		t.Fatalf("len(prompts) = %d, want 3", len(prompts))
	}
	for i, prompt := range prompts {
		if prompt == "" {
			t.Fatalf("prompt[%d] empty", i)
		}
	}
}

func TestSplitSegmentsCoversWholeScript(t *testing.T) {
	segments := splitSegments("abcdefghij", 3)
	if len(segments) != 3 {
		t.Fatalf("len = %d, want 3", len(segments))
	}
	if segments[2] != "ghij" {
		t.Fatalf("final segment = %q, want remainder included", segments[2])
	}
}
