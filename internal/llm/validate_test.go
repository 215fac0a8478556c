package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"surrounding space", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around object", "Here you go: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
		{"prose around array", "result: [\"x\"] done", `["x"]`},
		{"no json", "yes", "yes"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(ExtractJSON([]byte(tt.in))); got != tt.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func questionSchema() *Schema {
	return &Schema{
		Name: "test-question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":    map[string]any{"type": "string"},
				"type":    map[string]any{"type": "string", "enum": []string{"multiple_choice", "true_false"}},
				"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []string{"text", "type"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text":"2+2?","type":"true_false"}`, false},
		{"with optional", `{"text":"pick","type":"multiple_choice","options":["A) 1"]}`, false},
		{"missing required", `{"text":"2+2?"}`, true},
		{"wrong type", `{"text":5,"type":"true_false"}`, true},
		{"bad enum", `{"text":"x","type":"essay"}`, true},
		{"extra property", `{"text":"x","type":"true_false","hint":"h"}`, true},
		{"malformed", `{"text":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}
