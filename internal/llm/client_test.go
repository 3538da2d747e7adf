package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ChatWithMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(req.Messages))
		}

		resp := ChatResponse{
			Choices: []ChatChoice{
				{Message: Message{Role: "assistant", Content: "The grace period is 30 days."}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	messages := []Message{
		{Role: "system", Content: "You answer from policy context."},
		{Role: "user", Content: "What is the grace period?"},
	}
	answer, err := client.ChatWithMessages(context.Background(), messages, ChatParams{Temperature: 0.2})
	if err != nil {
		t.Fatalf("ChatWithMessages() unexpected error: %v", err)
	}
	if answer != "The grace period is 30 days." {
		t.Errorf("ChatWithMessages() = %q", answer)
	}
}

func TestClient_ChatWithMessages_ModelOverride(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: Message{Content: "ok"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "default-model")
	_, err := client.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{Model: "override-model"})
	if err != nil {
		t.Fatalf("ChatWithMessages() unexpected error: %v", err)
	}
	if gotModel != "override-model" {
		t.Errorf("model sent = %q, want override-model", gotModel)
	}
}

func TestClient_Chat_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream failure"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")
	if _, err := client.Chat(context.Background(), "hello"); err == nil {
		t.Error("Chat() expected error for 500 response, got nil")
	}
}

func TestClient_Chat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")
	if _, err := client.Chat(context.Background(), "hello"); err == nil {
		t.Error("Chat() expected error for empty choices, got nil")
	}
}
