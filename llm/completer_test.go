package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/use-agent/facecards/models"
)

func TestOpenAICompleter(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"CEO of Stripe"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(srv.Client(), "sk-test", "gpt-4o-mini", srv.URL+"/v1/")
	reply, err := c.Complete(context.Background(), "sys", "user", 150)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "CEO of Stripe" {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 150 || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAICompleterClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, models.ErrCodeLLMAuthFailure},
		{http.StatusTooManyRequests, models.ErrCodeLLMRateLimited},
		{http.StatusInternalServerError, models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		c := NewOpenAICompleter(srv.Client(), "k", "m", srv.URL)
		_, err := c.Complete(context.Background(), "s", "u", 10)
		srv.Close()

		var se *models.ScrapeError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: error %v is not a ScrapeError", tt.status, err)
		}
		if se.Code != tt.code {
			t.Errorf("status %d: code = %s, want %s", tt.status, se.Code, tt.code)
		}
	}
}

func TestAnthropicCompleter(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("X-Api-Key"); key != "sk-ant-test" {
			t.Errorf("X-Api-Key = %q", key)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [{"type": "text", "text": "Philosophy professor at NYU"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropicCompleter("sk-ant-test", "claude-sonnet-4-6", option.WithBaseURL(srv.URL))
	reply, err := c.Complete(context.Background(), "system prompt", "Person: x\nBio: y", 150)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Philosophy professor at NYU" {
		t.Errorf("reply = %q", reply)
	}
	if body["model"] != "claude-sonnet-4-6" {
		t.Errorf("model = %v", body["model"])
	}
	if mt, _ := body["max_tokens"].(float64); mt != 150 {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
}

func TestAnthropicCompleterKeepsOnlyTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_02",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [
				{"type": "thinking", "thinking": "Who is this?", "signature": "sig"},
				{"type": "text", "text": "Chef at "},
				{"type": "text", "text": "Noma"}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropicCompleter("sk-ant-test", "claude-sonnet-4-6", option.WithBaseURL(srv.URL))
	reply, err := c.Complete(context.Background(), "", "Person: x", 150)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Chef at Noma" {
		t.Errorf("reply = %q, want text blocks only", reply)
	}
}

func TestAnthropicCompleterAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicCompleter("bad", "claude-sonnet-4-6", option.WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), "", "u", 10)

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeLLMAuthFailure {
		t.Fatalf("err = %v, want %s", err, models.ErrCodeLLMAuthFailure)
	}
}
