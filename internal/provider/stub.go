package provider

import (
	"context"
	"encoding/json"
	"strings"
)

// StubSearcher returns mock search results (for development/testing).
type StubSearcher struct{}

func (s *StubSearcher) Search(_ context.Context, query string) (*SearchResponse, error) {
	slug := strings.ToLower(strings.Join(strings.Fields(query), ""))
	return &SearchResponse{
		Query: query,
		OrganicResults: []SearchResult{
			{
				Position: 1,
				Title:    query + " - LinkedIn",
				Link:     "https://linkedin.com/in/" + slug,
				Snippet:  "Professional profile of " + query + ". Software engineering, distributed systems.",
			},
			{
				Position: 2,
				Title:    query + " (@" + slug + ") / X",
				Link:     "https://twitter.com/" + slug,
				Snippet:  "Latest posts from " + query + ".",
			},
			{
				Position: 3,
				Title:    query + " - Personal Site",
				Link:     "https://example.com/" + slug,
				Snippet:  "Personal homepage and blog of " + query + ".",
			},
		},
		KnowledgeGraph: map[string]interface{}{
			"title": query,
			"type":  "Person",
		},
		RelatedSearches:  []string{query + " github", query + " blog"},
		RelatedQuestions: []string{"Who is " + query + "?"},
	}, nil
}

// StubGenerator returns mock generation output keyed off prompt markers
// (for development/testing).
type StubGenerator struct{}

func (g *StubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "notable_quotes"):
		b, _ := json.Marshal(map[string]interface{}{
			"topics":              []string{"project planning", "travel"},
			"communication_style": "direct and informal, thinks out loud",
			"key_points":          []string{"wants to ship the prototype by Friday", "prefers async updates"},
			"emotional_tone":      "upbeat, slightly rushed",
			"new_interests":       []string{"rock climbing"},
			"notable_quotes":      []string{"let's just ship it and see"},
		})
		return string(b), nil

	case strings.Contains(prompt, "communication_tips"):
		b, _ := json.Marshal(map[string]interface{}{
			"introduction":        "A software engineer with a public presence across several platforms.",
			"interests":           []string{"distributed systems", "open source"},
			"communication_style": "concise, technical, prefers written communication",
			"communication_tips":  []string{"Lead with the concrete problem", "Keep messages short"},
		})
		return string(b), nil

	case strings.Contains(prompt, "Translate the following"):
		return "This is the stub English translation of the transcribed audio.", nil

	default:
		return "Based on what is known about this person, keep your message short, concrete, and lead with the point.", nil
	}
}

// StubTranscriber returns a mock transcription (for development/testing).
type StubTranscriber struct{}

func (t *StubTranscriber) Transcribe(_ context.Context, path string) (*Transcription, error) {
	return &Transcription{
		Text:     "Stub transcription of " + path + ". We talked about the project timeline and a climbing trip.",
		Language: "en",
		Duration: 42.5,
	}, nil
}

// StubExtractor returns mock page text (for development/testing).
type StubExtractor struct{}

func (e *StubExtractor) Extract(_ context.Context, url string) (string, error) {
	return "Stub readable content extracted from " + url + ".", nil
}
