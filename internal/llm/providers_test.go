package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

func verdictSchema() *Schema {
	return &Schema{
		Name: "test-verdict",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"verdict": map[string]any{"type": "string", "enum": []any{"yes", "no"}},
			},
			"required":             []any{"verdict"},
			"additionalProperties": false,
		},
	}
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicError(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func TestAnthropicProvider_FreeText(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("  Yes, that is right. ", "end_turn"))

	resp, err := p.Generate(context.Background(), UserRequest("Answer yes or no.", "Is 2+2 four?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Yes, that is right." {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 80 {
		t.Fatalf("expected 80 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestAnthropicProvider_SchemaStripsFences(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("```json\n{\"verdict\":\"yes\"}\n```", "end_turn"))

	req := UserRequest("", "judge")
	req.Schema = verdictSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"verdict":"yes"}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
}

func TestAnthropicProvider_TruncatedSchemaResponse(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply(`{"verdict":`, "max_tokens"))

	req := UserRequest("", "judge")
	req.Schema = verdictSchema()
	_, err := p.Generate(context.Background(), req)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
	if !IsMalformed(err) {
		t.Fatal("truncation should count as malformed output")
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      string
		rateLimit bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", true},
		{"server error", http.StatusInternalServerError, "api_error", false},
		{"overloaded", 529, "overloaded_error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, anthropicError(tt.status, tt.kind))
			_, err := p.Generate(context.Background(), UserRequest("", "test"))
			if err == nil {
				t.Fatal("expected error")
			}
			var rl *ErrRateLimit
			if errors.As(err, &rl) != tt.rateLimit {
				t.Fatalf("rate limit mapping wrong for %T (%v)", err, err)
			}
			if !IsUnavailable(err) {
				t.Fatalf("expected unavailable classification, got %T", err)
			}
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(config), model: "gpt-4o-mini"}
}

func openaiReply(content, finish string, captured *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func TestOpenAIProvider_SchemaRequest(t *testing.T) {
	var captured map[string]any
	p := newTestOpenAIProvider(t, openaiReply(`{"verdict":"no"}`, "stop", &captured))

	req := UserRequest("You grade answers.", "judge this")
	req.Schema = verdictSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"verdict":"no"}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", captured["response_format"])
	}
	if js, _ := format["json_schema"].(map[string]any); js["name"] != "test-verdict" {
		t.Fatalf("unexpected json_schema block %v", format["json_schema"])
	}
	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %v", captured["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != openai.ChatMessageRoleSystem {
		t.Fatalf("first message role = %v", first["role"])
	}
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(`{"verdict":"maybe"}`, "stop", nil))

	req := UserRequest("", "judge")
	req.Schema = verdictSchema()
	_, err := p.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "slow down", "type": "rate_limit", "code": "rate_limit_exceeded"},
		})
	})

	_, err := p.Generate(context.Background(), UserRequest("", "test"))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "x", "model": "gpt-4o-mini", "choices": []any{}})
	})

	_, err := p.Generate(context.Background(), UserRequest("", "test"))
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %T (%v)", err, err)
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "openai/gpt-4o-mini" {
		t.Fatalf("model = %q, want openai/gpt-4o-mini", p.ModelID())
	}

	if _, err := NewOpenRouterProvider(OpenRouterConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGeminiSchemaConversion(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":    map[string]any{"type": "string"},
			"type":    map[string]any{"type": "string", "enum": []string{"multiple_choice", "true_false"}},
			"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"score":   map[string]any{"type": "integer"},
		},
		"required": []string{"text", "type"},
	}

	s := geminiSchema(def)
	if s.Type != "OBJECT" {
		t.Fatalf("expected OBJECT, got %s", s.Type)
	}
	if len(s.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(s.Properties))
	}
	if len(s.Properties["type"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %v", s.Properties["type"].Enum)
	}
	if s.Properties["options"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items, got %s", s.Properties["options"].Items.Type)
	}
	if s.Properties["score"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER, got %s", s.Properties["score"].Type)
	}
	if len(s.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %v", s.Required)
	}
}

func TestGeminiModelMapping(t *testing.T) {
	if got := resolveModel("gemini-flash", geminiModels); got != "gemini-2.0-flash" {
		t.Fatalf("resolveModel(gemini-flash) = %q", got)
	}
	if got := resolveModel("gemini-2.5-pro", geminiModels); got != "gemini-2.5-pro" {
		t.Fatalf("pass-through failed: %q", got)
	}
}
