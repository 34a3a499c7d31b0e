package ai

import (
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestJoinCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{{Text: " go, kubernetes "}, nil, {Text: ""}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "postgres"}}}},
		},
	}
	got, err := joinCandidateText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "go, kubernetes\npostgres" {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := joinCandidateText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("expected error for empty response")
	}
}
