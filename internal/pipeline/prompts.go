package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

func buildProfilePrompt(context string) string {
	return fmt.Sprintf(`Based on the following information about a person, generate a detailed profile.
Include:
1. Who is this person? (brief introduction)
2. What are their main interests and communication style?
3. How to best communicate with them?

Output ONLY valid JSON with this exact structure (no markdown, no explanation):
{"introduction": "brief introduction", "interests": ["interest 1", "interest 2"], "communication_style": "description of communication style", "communication_tips": ["tip 1", "tip 2"]}

Information:
%s`, context)
}

func buildTranslatePrompt(text string) string {
	return fmt.Sprintf(`Translate the following transcribed speech into English.
Preserve the meaning and tone; do not add commentary. Output only the translation.

%s`, text)
}

func buildInsightPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following transcribed audio content and extract key insights:

%s

Provide a structured analysis including:
1. Main topics discussed
2. Communication style and patterns
3. Key points or important information
4. Emotional tone and sentiment
5. New interests or preferences mentioned
6. Any notable quotes or statements

Output ONLY valid JSON with this exact structure (no markdown, no explanation):
{"topics": ["topic1", "topic2"], "communication_style": "description of communication style", "key_points": ["point1", "point2"], "emotional_tone": "description of emotional tone", "new_interests": ["interest1", "interest2"], "notable_quotes": ["quote1", "quote2"]}`, text)
}

func buildChatPrompt(name, profileJSON, insightJSON, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an AI assistant helping someone communicate with %s.
Use the following profile information to provide personalized advice and responses:

Profile:
%s
`, name, profileJSON)
	if insightJSON != "" {
		fmt.Fprintf(&b, "\nLatest conversation insights:\n%s\n", insightJSON)
	}
	fmt.Fprintf(&b, `
User message: %s

Provide a helpful response that:
1. Is tailored to %s's communication style and interests
2. Offers specific suggestions based on their profile
3. Maintains a professional and respectful tone
4. Is concise and actionable

Format your response in a conversational way, as if you're giving advice to a friend.`, message, name)
	return b.String()
}

// buildSearchContext flattens a search payload into prompt context: the
// knowledge panel first, then the top organic results.
func buildSearchContext(sp *SearchPayload) string {
	var parts []string

	if len(sp.KnowledgeGraph) > 0 {
		parts = append(parts, "Knowledge Graph Information:")
		keys := make([]string, 0, len(sp.KnowledgeGraph))
		for k := range sp.KnowledgeGraph {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := sp.KnowledgeGraph[k].(type) {
			case string:
				parts = append(parts, fmt.Sprintf("%s: %s", k, v))
			case []interface{}:
				parts = append(parts, fmt.Sprintf("%s: %v", k, v))
			}
		}
	}

	if len(sp.OrganicResults) > 0 {
		parts = append(parts, "\nSearch Results:")
		results := sp.OrganicResults
		if len(results) > 5 {
			results = results[:5]
		}
		for _, r := range results {
			parts = append(parts, "Title: "+r.Title)
			parts = append(parts, "Snippet: "+r.Snippet)
			parts = append(parts, "Link: "+r.Link+"\n")
		}
	}

	return strings.Join(parts, "\n")
}

// truncateRunes truncates s to maxRunes runes (Unicode-safe).
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "\n... [truncated]"
}
