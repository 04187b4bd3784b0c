package analyzer

import (
	"fmt"
	"strings"

	"github.com/justestif/go-mood-music/internal/lexicon"
)

const confirmTemplate = `You are an expert emotion analyst. The user was initially detected as possibly feeling %q.
Analyze their reply: %q

Determine:
1. Whether they confirm or deny the suggested emotion, or add context to it.
2. Their actual emotional state based on their words, tone and situation.
3. How intense that emotion is.
4. A warm, empathetic response.

Available emotions: %s

Respond with exactly one JSON object in this format:
{
  "confirms_suggestion": true or false,
  "actual_emotion": "one of the available emotions",
  "intensity": "low" | "medium" | "high",
  "confidence": 0.0 to 1.0,
  "reasoning": "brief explanation of the emotional analysis",
  "context": "situational context if any",
  "empathetic_response": "warm, understanding response (max 60 words)",
  "music_suggestion_reason": "why this music would help (max 40 words)",
  "ready_for_music": true or false
}`

const freshTemplate = `You are an expert emotion and mood analyst. Analyze this message for emotional tone, context and intensity:

Message: %q

Consider:
1. Explicit emotional words and phrases.
2. Implicit tone and situational context.
3. Intensity (low, medium, high).
4. Linguistic cues such as punctuation, capitalization and word choice.
5. Whether a specific music genre is requested.

Available emotions: %s

Respond with exactly one JSON object in this format:
{
  "emotion": "one of the available emotions",
  "intensity": "low" | "medium" | "high",
  "confidence": 0.0 to 1.0,
  "reasoning": "brief explanation of why you detected this emotion",
  "context": "any situational context detected",
  "empathetic_response": "a warm, understanding response (max 60 words)",
  "music_suggestion_reason": "why this type of music would help (max 40 words)",
  "genre_request": "specific genre if mentioned, otherwise null",
  "ready_for_music": true or false
}`

func confirmPrompt(lex *lexicon.Lexicon, utterance string, suggested lexicon.Emotion) string {
	return fmt.Sprintf(confirmTemplate, string(suggested), utterance, emotionList(lex))
}

func freshPrompt(lex *lexicon.Lexicon, utterance string) string {
	return fmt.Sprintf(freshTemplate, utterance, emotionList(lex))
}

func emotionList(lex *lexicon.Lexicon) string {
	order := lex.EmotionOrder()
	names := make([]string, len(order))
	for i, e := range order {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}
