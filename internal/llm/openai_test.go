package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"runledger/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(IdentifyRequest{
		Title: "Surprise Gauntlet At The Office",
		Show:  "The Yak",
		Evidence: []model.Snippet{
			{Text: "all right let's run the gauntlet", StartTime: 125},
		},
		Discussion: []model.Snippet{
			{Text: "that gauntlet yesterday was rough"},
		},
	})

	for _, want := range []string{
		"Surprise Gauntlet At The Office",
		"The Yak",
		"[2:05] all right let's run the gauntlet",
		"that gauntlet yesterday was rough",
		`"participant"`,
		"null",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *model.Suggestion
		err  bool
	}{
		{
			name: "plain json",
			in:   `{"participant": "Jane Doe", "time_hint": "3:42.15"}`,
			want: &model.Suggestion{Participant: "Jane Doe", TimeHint: "3:42.15", Model: "m"},
		},
		{
			name: "fenced json",
			in:   "```json\n{\"participant\": \"Jane Doe\", \"time_hint\": null}\n```",
			want: &model.Suggestion{Participant: "Jane Doe", Model: "m"},
		},
		{
			name: "refusal via null",
			in:   `{"participant": null, "time_hint": null}`,
			want: nil,
		},
		{
			name: "refusal via unknown",
			in:   `{"participant": "unknown", "time_hint": ""}`,
			want: nil,
		},
		{
			name: "prose instead of json",
			in:   "I think it was probably Jane Doe.",
			err:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestion(tt.in, "m")
			if tt.err {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSuggestion() error: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOpenAIIdentify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Surprise Gauntlet") {
			t.Errorf("prompt not forwarded: %+v", req.Messages)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"participant\": \"Jane Doe\", \"time_hint\": \"3:42.15\"}"}}]}`)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(model.LLMConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error: %v", err)
	}

	suggestion, err := provider.Identify(context.Background(), IdentifyRequest{
		Title: "Surprise Gauntlet At The Office",
	})
	if err != nil {
		t.Fatalf("Identify() error: %v", err)
	}
	if suggestion == nil || suggestion.Participant != "Jane Doe" {
		t.Fatalf("suggestion = %+v", suggestion)
	}
	if suggestion.TimeHint != "3:42.15" {
		t.Errorf("TimeHint = %q", suggestion.TimeHint)
	}
	if suggestion.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", suggestion.Model)
	}
}

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(model.LLMConfig{})
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	if provider != nil {
		t.Errorf("empty provider name should disable the oracle, got %v", provider)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(model.LLMConfig{Provider: "palmtree"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
