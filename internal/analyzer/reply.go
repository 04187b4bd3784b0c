package analyzer

import "strings"

// Reply is the JSON object the generative collaborator is asked to produce.
// Confirming prompts fill actual_emotion and confirms_suggestion; fresh
// prompts fill emotion and genre_request.
type Reply struct {
	ConfirmsSuggestion    *bool   `json:"confirms_suggestion,omitempty" jsonschema_description:"whether the user agrees with the suggested emotion"`
	ActualEmotion         string  `json:"actual_emotion,omitempty" jsonschema_description:"the emotion the user actually expresses"`
	Emotion               string  `json:"emotion,omitempty" jsonschema_description:"detected emotion label"`
	Intensity             string  `json:"intensity" jsonschema:"enum=low,enum=medium,enum=high"`
	Confidence            float64 `json:"confidence" jsonschema:"minimum=0,maximum=1"`
	Reasoning             string  `json:"reasoning" jsonschema_description:"brief explanation of the analysis"`
	Context               string  `json:"context" jsonschema_description:"situational context if any"`
	EmpatheticResponse    string  `json:"empathetic_response" jsonschema_description:"warm understanding response of at most 60 words"`
	MusicSuggestionReason string  `json:"music_suggestion_reason" jsonschema_description:"why this music would help in at most 40 words"`
	GenreRequest          *string `json:"genre_request,omitempty" jsonschema_description:"explicitly requested genre or empty"`
	ReadyForMusic         bool    `json:"ready_for_music"`
}

// ExtractJSON returns the first balanced {...} object in text. Braces inside
// JSON string literals are ignored.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
