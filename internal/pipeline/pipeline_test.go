package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Kaliakbarb/persona/internal/model"
	"github.com/Kaliakbarb/persona/internal/provider"
	"github.com/Kaliakbarb/persona/internal/store"
)

// memStore is an in-memory ArtifactStore for pipeline tests.
type memStore struct {
	mu        sync.Mutex
	artifacts []model.Artifact
	saveErr   error
}

func (m *memStore) Save(_ context.Context, a model.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.artifacts = append(m.artifacts, a)
	return nil
}

func (m *memStore) List(_ context.Context, subjectKey string) ([]model.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := store.SanitizeKey(subjectKey)
	var out []model.Artifact
	for i := len(m.artifacts) - 1; i >= 0; i-- {
		if store.SanitizeKey(m.artifacts[i].SubjectKey) == key {
			out = append(out, m.artifacts[i])
		}
	}
	return out, nil
}

func (m *memStore) GetLatestByKind(_ context.Context, subjectKey, kind string) (*model.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := store.SanitizeKey(subjectKey)
	for i := len(m.artifacts) - 1; i >= 0; i-- {
		a := m.artifacts[i]
		if store.SanitizeKey(a.SubjectKey) == key && a.Kind == kind {
			return &a, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeSearcher struct {
	resp  *provider.SearchResponse
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, query string) (*provider.SearchResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &provider.SearchResponse{Query: query}, nil
}

// fakeGenerator routes on prompt content, mirroring how the pipeline uses one
// generator for several prompt shapes.
type fakeGenerator struct {
	generate func(prompt string) (string, error)
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.generate(prompt)
}

type fakeTranscriber struct {
	text     string
	language string
	err      error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*provider.Transcription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Transcription{Text: f.text, Language: f.language, Duration: 12.5}, nil
}

func decodePayload(t *testing.T, a *model.Artifact) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(a.Payload), &m); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return m
}

func stepOf(t *testing.T, err error) string {
	t.Helper()
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StepError", err)
	}
	return se.StepName()
}

// ---------------------------------------------------------------------------
// ProfileSearch
// ---------------------------------------------------------------------------

func TestProfileSearch_ClassifiesSocialProfiles(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{resp: &provider.SearchResponse{
		Query: "jane doe",
		OrganicResults: []provider.SearchResult{
			{Position: 1, Title: "Jane Doe - LinkedIn", Link: "https://www.linkedin.com/in/jdoe", Snippet: "Engineer"},
			{Position: 2, Title: "Jane's blog", Link: "https://example.com/jane", Snippet: "Posts"},
		},
	}}
	p := New(ms, search, &fakeGenerator{}, &fakeTranscriber{})

	artifact, err := p.ProfileSearch(context.Background(), "jane_doe", "")
	if err != nil {
		t.Fatalf("ProfileSearch: %v", err)
	}
	if artifact.Kind != model.KindSearch {
		t.Errorf("Kind = %q, want %q", artifact.Kind, model.KindSearch)
	}

	var payload SearchPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Query != "jane doe" {
		t.Errorf("Query = %q, want %q", payload.Query, "jane doe")
	}
	if len(payload.SocialProfiles) != 1 {
		t.Fatalf("SocialProfiles len = %d, want 1", len(payload.SocialProfiles))
	}
	sp := payload.SocialProfiles[0]
	if sp.Platform != "LinkedIn" || sp.URL != "https://www.linkedin.com/in/jdoe" {
		t.Errorf("social profile = %+v, want LinkedIn entry", sp)
	}

	// Empty collections must serialize as arrays, never null.
	for _, field := range []string{`"related_searches":[]`, `"related_questions":[]`} {
		if !strings.Contains(artifact.Payload, field) {
			t.Errorf("payload missing %s: %s", field, artifact.Payload)
		}
	}
}

func TestProfileSearch_UsesSubjectKeyWhenNameMissing(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{}
	p := New(ms, search, &fakeGenerator{}, &fakeTranscriber{})

	artifact, err := p.ProfileSearch(context.Background(), "jane_doe", "")
	if err != nil {
		t.Fatalf("ProfileSearch: %v", err)
	}
	var payload SearchPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Query != "jane doe" {
		t.Errorf("Query = %q, want subject key turned into a name", payload.Query)
	}
}

func TestProfileSearch_ProviderFailurePersistsErrorOnly(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{err: &model.ProviderError{Provider: "serpapi", StatusCode: 500, Err: errors.New("boom")}}
	p := New(ms, search, &fakeGenerator{}, &fakeTranscriber{})

	artifact, err := p.ProfileSearch(context.Background(), "jane_doe", "")
	if err == nil {
		t.Fatal("ProfileSearch: expected error")
	}
	if got := stepOf(t, err); got != "search" {
		t.Errorf("step = %q, want %q", got, "search")
	}
	if artifact == nil {
		t.Fatal("expected an error artifact to be persisted")
	}

	payload := decodePayload(t, artifact)
	if _, ok := payload["error"]; !ok {
		t.Error("error payload missing error field")
	}
	if len(payload) != 1 {
		t.Errorf("error payload has %d fields, want only error: %v", len(payload), payload)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

const profileJSON = `{"introduction":"Jane is an engineer.","interests":["robotics"],"communication_style":"direct","communication_tips":["be concise"]}`

func TestProfile_ReusesStoredSearch(t *testing.T) {
	ms := &memStore{}
	stored, _ := json.Marshal(SearchPayload{
		Query: "jane doe",
		OrganicResults: []provider.SearchResult{
			{Position: 1, Title: "Jane", Link: "https://example.com/jane", Snippet: "bio"},
		},
	})
	if err := ms.Save(context.Background(), model.NewArtifact("id1", "jane_doe", model.KindSearch, string(stored))); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	search := &fakeSearcher{}
	gen := &fakeGenerator{generate: func(string) (string, error) { return profileJSON, nil }}
	p := New(ms, search, gen, &fakeTranscriber{})

	artifact, err := p.Profile(context.Background(), "jane_doe", "")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if search.calls != 0 {
		t.Errorf("search.calls = %d, want 0 (stored search must be reused)", search.calls)
	}

	var payload ProfilePayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Introduction != "Jane is an engineer." {
		t.Errorf("Introduction = %q", payload.Introduction)
	}
	if payload.ParseFailed {
		t.Error("ParseFailed = true, want false")
	}
}

func TestProfile_RunsSearchWhenNoneStored(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{resp: &provider.SearchResponse{
		Query: "jane doe",
		OrganicResults: []provider.SearchResult{
			{Position: 1, Title: "Jane", Link: "https://example.com/jane", Snippet: "bio"},
		},
	}}
	gen := &fakeGenerator{generate: func(string) (string, error) { return profileJSON, nil }}
	p := New(ms, search, gen, &fakeTranscriber{})

	if _, err := p.Profile(context.Background(), "jane_doe", ""); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if search.calls != 1 {
		t.Errorf("search.calls = %d, want 1", search.calls)
	}

	// The implicit search run persists its own artifact too.
	if _, err := ms.GetLatestByKind(context.Background(), "jane_doe", model.KindSearch); err != nil {
		t.Errorf("expected a search artifact from the implicit run: %v", err)
	}
}

func TestProfile_IgnoresStoredErrorPayload(t *testing.T) {
	ms := &memStore{}
	errPayload, _ := json.Marshal(ErrorPayload{Error: "search failed"})
	if err := ms.Save(context.Background(), model.NewArtifact("id1", "jane_doe", model.KindSearch, string(errPayload))); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	search := &fakeSearcher{}
	gen := &fakeGenerator{generate: func(string) (string, error) { return profileJSON, nil }}
	p := New(ms, search, gen, &fakeTranscriber{})

	if _, err := p.Profile(context.Background(), "jane_doe", ""); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if search.calls != 1 {
		t.Errorf("search.calls = %d, want 1 (error payload must not be reused as context)", search.calls)
	}
}

func TestProfile_ParseFailureDegrades(t *testing.T) {
	ms := &memStore{}
	raw := "I'm sorry, I cannot produce JSON today."
	search := &fakeSearcher{}
	gen := &fakeGenerator{generate: func(string) (string, error) { return raw, nil }}
	p := New(ms, search, gen, &fakeTranscriber{})

	artifact, err := p.Profile(context.Background(), "jane_doe", "")
	if err != nil {
		t.Fatalf("Profile: %v (parse failure must not abort the flow)", err)
	}

	var payload ProfilePayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.ParseFailed {
		t.Error("ParseFailed = false, want true")
	}
	if payload.RawResponse != raw {
		t.Errorf("RawResponse = %q, want unmodified model text", payload.RawResponse)
	}
	if payload.Interests == nil || payload.CommunicationTips == nil {
		t.Error("list fields must be empty arrays, not null")
	}
}

func TestProfile_GeneratorFailureIsFatal(t *testing.T) {
	ms := &memStore{}
	gen := &fakeGenerator{generate: func(string) (string, error) {
		return "", &model.ProviderError{Provider: "gemini", StatusCode: 503, Err: errors.New("overloaded")}
	}}
	p := New(ms, &fakeSearcher{}, gen, &fakeTranscriber{})

	_, err := p.Profile(context.Background(), "jane_doe", "")
	if err == nil {
		t.Fatal("Profile: expected error")
	}
	if got := stepOf(t, err); got != "generate" {
		t.Errorf("step = %q, want %q", got, "generate")
	}
	if _, err := ms.GetLatestByKind(context.Background(), "jane_doe", model.KindProfile); !errors.Is(err, model.ErrNotFound) {
		t.Error("no profile artifact must be persisted on generator failure")
	}
}

func TestProfile_ExtractorEnrichesContext(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{resp: &provider.SearchResponse{
		Query: "jane doe",
		OrganicResults: []provider.SearchResult{
			{Position: 1, Title: "Jane", Link: "https://example.com/jane", Snippet: "bio"},
		},
	}}
	gen := &fakeGenerator{generate: func(string) (string, error) { return profileJSON, nil }}
	extractor := extractorFunc(func(_ context.Context, url string) (string, error) {
		if url != "https://example.com/jane" {
			return "", fmt.Errorf("unexpected url %s", url)
		}
		return "Jane builds robots for a living.", nil
	})
	p := New(ms, search, gen, &fakeTranscriber{}, WithExtractor(extractor))

	if _, err := p.Profile(context.Background(), "jane_doe", ""); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Jane builds robots for a living.") {
		t.Error("prompt missing extracted page content")
	}
}

func TestProfile_ExtractorFailureIsNonFatal(t *testing.T) {
	ms := &memStore{}
	search := &fakeSearcher{resp: &provider.SearchResponse{
		Query: "jane doe",
		OrganicResults: []provider.SearchResult{
			{Position: 1, Title: "Jane", Link: "https://example.com/jane", Snippet: "bio"},
		},
	}}
	gen := &fakeGenerator{generate: func(string) (string, error) { return profileJSON, nil }}
	extractor := extractorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("timeout")
	})
	p := New(ms, search, gen, &fakeTranscriber{}, WithExtractor(extractor))

	if _, err := p.Profile(context.Background(), "jane_doe", ""); err != nil {
		t.Fatalf("Profile: %v (extraction failure must not abort the flow)", err)
	}
}

type extractorFunc func(ctx context.Context, url string) (string, error)

func (f extractorFunc) Extract(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// ---------------------------------------------------------------------------
// AudioInsight
// ---------------------------------------------------------------------------

const insightJSON = `{"topics":["travel"],"communication_style":"casual","key_points":["moving to Lisbon"],"emotional_tone":"excited","new_interests":["surfing"],"notable_quotes":["can't wait"]}`

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestAudioInsight_TranslatesNonEnglishAudio(t *testing.T) {
	ms := &memStore{}
	gen := &fakeGenerator{generate: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Translate the following") {
			return "I am moving to Lisbon next month.", nil
		}
		return insightJSON, nil
	}}
	tr := &fakeTranscriber{text: "Келесі айда Лиссабонға көшемін.", language: "kk"}
	p := New(ms, &fakeSearcher{}, gen, tr)
	audioPath := writeAudioFixture(t)

	artifact, err := p.AudioInsight(context.Background(), "jane_doe", audioPath)
	if err != nil {
		t.Fatalf("AudioInsight: %v", err)
	}
	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Error("audio file must be removed after processing")
	}

	var payload InsightPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.Translated {
		t.Error("Translated = false, want true")
	}
	if payload.Transcription != "Келесі айда Лиссабонға көшемін." {
		t.Errorf("Transcription = %q, want raw provider text", payload.Transcription)
	}
	if payload.Language != "kk" {
		t.Errorf("Language = %q, want %q", payload.Language, "kk")
	}
	if len(payload.AudioHash) != 64 {
		t.Errorf("AudioHash len = %d, want 64 hex chars", len(payload.AudioHash))
	}
	if len(payload.Insights.Topics) != 1 || payload.Insights.Topics[0] != "travel" {
		t.Errorf("Insights.Topics = %v", payload.Insights.Topics)
	}
	if payload.Insights.EmotionalTone != "excited" {
		t.Errorf("EmotionalTone = %q", payload.Insights.EmotionalTone)
	}
}

func TestAudioInsight_EnglishAudioSkipsTranslation(t *testing.T) {
	ms := &memStore{}
	gen := &fakeGenerator{generate: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Translate the following") {
			t.Error("translation must be skipped for English audio")
		}
		return insightJSON, nil
	}}
	tr := &fakeTranscriber{text: "Hello there.", language: "en-US"}
	p := New(ms, &fakeSearcher{}, gen, tr)

	artifact, err := p.AudioInsight(context.Background(), "jane_doe", writeAudioFixture(t))
	if err != nil {
		t.Fatalf("AudioInsight: %v", err)
	}
	var payload InsightPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Translated {
		t.Error("Translated = true, want false")
	}
}

func TestAudioInsight_TranscribeFailureIsFatal(t *testing.T) {
	ms := &memStore{}
	tr := &fakeTranscriber{err: &model.ProviderError{Provider: "whisperx", Err: errors.New("exit 1")}}
	p := New(ms, &fakeSearcher{}, &fakeGenerator{}, tr)
	audioPath := writeAudioFixture(t)

	_, err := p.AudioInsight(context.Background(), "jane_doe", audioPath)
	if err == nil {
		t.Fatal("AudioInsight: expected error")
	}
	if got := stepOf(t, err); got != "transcribe" {
		t.Errorf("step = %q, want %q", got, "transcribe")
	}
	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Error("audio file must be removed even on failure")
	}
	if len(ms.artifacts) != 0 {
		t.Errorf("artifacts = %d, want 0", len(ms.artifacts))
	}
}

func TestAudioInsight_TranslationFailureDegrades(t *testing.T) {
	ms := &memStore{}
	gen := &fakeGenerator{generate: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Translate the following") {
			return "", errors.New("quota exceeded")
		}
		return insightJSON, nil
	}}
	tr := &fakeTranscriber{text: "Bonjour tout le monde.", language: "fr"}
	p := New(ms, &fakeSearcher{}, gen, tr)

	artifact, err := p.AudioInsight(context.Background(), "jane_doe", writeAudioFixture(t))
	if err != nil {
		t.Fatalf("AudioInsight: %v (translation failure must degrade)", err)
	}
	var payload InsightPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Translated {
		t.Error("Translated = true, want false after failed translation")
	}
	if len(payload.Insights.Topics) != 1 {
		t.Errorf("Insights.Topics = %v, want analysis of original text", payload.Insights.Topics)
	}
}

func TestAudioInsight_UnparsableInsightDegrades(t *testing.T) {
	ms := &memStore{}
	raw := "The speaker seems upbeat overall."
	gen := &fakeGenerator{generate: func(string) (string, error) { return raw, nil }}
	tr := &fakeTranscriber{text: "Hello.", language: "en"}
	p := New(ms, &fakeSearcher{}, gen, tr)

	artifact, err := p.AudioInsight(context.Background(), "jane_doe", writeAudioFixture(t))
	if err != nil {
		t.Fatalf("AudioInsight: %v", err)
	}
	var payload InsightPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.ParseFailed {
		t.Error("ParseFailed = false, want true")
	}
	if payload.RawResponse != raw {
		t.Errorf("RawResponse = %q, want unmodified model text", payload.RawResponse)
	}
	assertInsightDefaults(t, payload.Insights)
}

func TestAudioInsight_GeneratorFailureDegrades(t *testing.T) {
	ms := &memStore{}
	gen := &fakeGenerator{generate: func(string) (string, error) {
		return "", &model.ProviderError{Provider: "gemini", StatusCode: 500, Err: errors.New("boom")}
	}}
	tr := &fakeTranscriber{text: "Hello.", language: "en"}
	p := New(ms, &fakeSearcher{}, gen, tr)

	artifact, err := p.AudioInsight(context.Background(), "jane_doe", writeAudioFixture(t))
	if err != nil {
		t.Fatalf("AudioInsight: %v (generation failure must degrade)", err)
	}
	var payload InsightPayload
	if err := json.Unmarshal([]byte(artifact.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Error == "" {
		t.Error("Error field must carry the generation failure")
	}
	if payload.Transcription != "Hello." {
		t.Errorf("Transcription = %q, want preserved text", payload.Transcription)
	}
	assertInsightDefaults(t, payload.Insights)
}

func assertInsightDefaults(t *testing.T, r InsightResult) {
	t.Helper()
	if r.CommunicationStyle != "unknown" || r.EmotionalTone != "unknown" {
		t.Errorf("fallback descriptions = (%q, %q), want unknown", r.CommunicationStyle, r.EmotionalTone)
	}
	if r.Topics == nil || r.KeyPoints == nil || r.NewInterests == nil || r.NotableQuotes == nil {
		t.Error("fallback lists must be empty arrays, not null")
	}
	if len(r.Topics)+len(r.KeyPoints)+len(r.NewInterests)+len(r.NotableQuotes) != 0 {
		t.Errorf("fallback lists must be empty: %+v", r)
	}
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func TestChat_NoProfileReturnsNotFound(t *testing.T) {
	p := New(&memStore{}, &fakeSearcher{}, &fakeGenerator{}, &fakeTranscriber{})

	_, err := p.Chat(context.Background(), "jane_doe", "How do I greet her?")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want model.ErrNotFound", err)
	}
}

func TestChat_UsesProfileAndInsightContext(t *testing.T) {
	ms := &memStore{}
	ctx := context.Background()
	if err := ms.Save(ctx, model.NewArtifact("id1", "jane_doe", model.KindProfile, profileJSON)); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := ms.Save(ctx, model.NewArtifact("id2", "jane_doe", model.KindInsight, insightJSON)); err != nil {
		t.Fatalf("seed insight: %v", err)
	}

	gen := &fakeGenerator{generate: func(string) (string, error) { return "  Open with a question about robotics.  ", nil }}
	p := New(ms, &fakeSearcher{}, gen, &fakeTranscriber{})

	reply, err := p.Chat(ctx, "jane_doe", "How do I greet her?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Open with a question about robotics." {
		t.Errorf("reply = %q, want trimmed model output", reply)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"Jane is an engineer.", "moving to Lisbon", "How do I greet her?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestDisplayName(t *testing.T) {
	tests := []struct {
		subjectKey string
		fullName   string
		want       string
	}{
		{"jane_doe", "", "jane doe"},
		{"jane_doe", "Jane Doe", "Jane Doe"},
		{"john-smith_jr", "", "john smith jr"},
	}
	for _, tt := range tests {
		if got := displayName(tt.subjectKey, tt.fullName); got != tt.want {
			t.Errorf("displayName(%q, %q) = %q, want %q", tt.subjectKey, tt.fullName, got, tt.want)
		}
	}
}

func TestParseModelJSON(t *testing.T) {
	type doc struct {
		Topic string `json:"topic"`
	}

	t.Run("plain object", func(t *testing.T) {
		var d doc
		if err := parseModelJSON(`{"topic":"go"}`, &d); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if d.Topic != "go" {
			t.Errorf("Topic = %q", d.Topic)
		}
	})

	t.Run("markdown fenced", func(t *testing.T) {
		var d doc
		raw := "```json\n{\"topic\":\"go\"}\n```"
		if err := parseModelJSON(raw, &d); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if d.Topic != "go" {
			t.Errorf("Topic = %q", d.Topic)
		}
	})

	t.Run("prose around object", func(t *testing.T) {
		var d doc
		raw := "Sure, here you go: {\"topic\":\"go\"} Hope that helps!"
		if err := parseModelJSON(raw, &d); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if d.Topic != "go" {
			t.Errorf("Topic = %q", d.Topic)
		}
	})

	t.Run("no object", func(t *testing.T) {
		var d doc
		err := parseModelJSON("no json here", &d)
		var pe *model.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("err = %v, want *model.ParseError", err)
		}
		if pe.Raw != "no json here" {
			t.Errorf("Raw = %q, want original text", pe.Raw)
		}
	})
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("got %q, want unchanged", got)
	}
	got := truncateRunes("héllo wörld", 5)
	if !strings.HasPrefix(got, "héllo") || !strings.Contains(got, "truncated") {
		t.Errorf("got %q, want 5-rune prefix plus marker", got)
	}
}
