package pipeline

import "github.com/Kaliakbarb/persona/internal/provider"

// SocialProfile is one classified social-platform entry from a search run.
type SocialProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// SearchPayload is the fixed schema of a "search" artifact.
type SearchPayload struct {
	Timestamp        string                  `json:"timestamp"`
	Query            string                  `json:"query"`
	OrganicResults   []provider.SearchResult `json:"organic_results"`
	KnowledgeGraph   map[string]interface{}  `json:"knowledge_graph"`
	RelatedSearches  []string                `json:"related_searches"`
	RelatedQuestions []string                `json:"related_questions"`
	SocialProfiles   []SocialProfile         `json:"social_profiles"`
}

// ErrorPayload is persisted when a flow fails outright: only the error field,
// never a half-populated result set.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ProfilePayload is the fixed schema of a "profile" artifact. All fields are
// always present; when the model output could not be parsed, ParseFailed is
// set and RawResponse carries the unmodified model text.
type ProfilePayload struct {
	GeneratedAt        string   `json:"generated_at"`
	Query              string   `json:"query"`
	Introduction       string   `json:"introduction"`
	Interests          []string `json:"interests"`
	CommunicationStyle string   `json:"communication_style"`
	CommunicationTips  []string `json:"communication_tips"`
	ParseFailed        bool     `json:"parse_failed"`
	RawResponse        string   `json:"raw_response"`
}

// InsightResult holds the six structured insight fields extracted from a
// transcription. Consumers depend on every field being present.
type InsightResult struct {
	Topics             []string `json:"topics"`
	CommunicationStyle string   `json:"communication_style"`
	KeyPoints          []string `json:"key_points"`
	EmotionalTone      string   `json:"emotional_tone"`
	NewInterests       []string `json:"new_interests"`
	NotableQuotes      []string `json:"notable_quotes"`
}

// defaultInsightResult returns the fallback values used when insight
// extraction degrades: empty lists and "unknown" descriptions.
func defaultInsightResult() InsightResult {
	return InsightResult{
		Topics:             []string{},
		CommunicationStyle: "unknown",
		KeyPoints:          []string{},
		EmotionalTone:      "unknown",
		NewInterests:       []string{},
		NotableQuotes:      []string{},
	}
}

// InsightPayload is the fixed schema of an "insight" artifact.
//
// Transcription always carries the raw (untranslated) provider text. When the
// insight-extraction output could not be parsed, ParseFailed is set,
// RawResponse carries the unmodified model text, and Insights holds the
// fallback values. When the generation call itself failed, Error carries the
// failure message instead.
type InsightPayload struct {
	Transcription string        `json:"transcription"`
	Language      string        `json:"language"`
	Translated    bool          `json:"translated"`
	AudioHash     string        `json:"audio_hash"`
	Insights      InsightResult `json:"insights"`
	ParseFailed   bool          `json:"parse_failed"`
	RawResponse   string        `json:"raw_response"`
	Error         string        `json:"error"`
}
