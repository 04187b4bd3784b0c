package conversation

import (
	"fmt"

	"github.com/justestif/go-mood-music/internal/lexicon"
)

// Bot lines that are not part of the lexicon.
const (
	msgWelcome        = "Hi! I'm NEURA, your AI music companion. I can sense emotions and suggest perfect music for any mood."
	msgOpening        = "Just tell me what's on your mind or how you're feeling, and I'll find the perfect music to match your mood."
	msgAskAgain       = "No problem. How are you actually feeling right now?"
	msgTellMeMore     = "Tell me more about what's happening - I want to find music that really fits your situation."
	msgUnderstandMore = "I'd love to understand your mood better. What's been on your mind lately?"
	msgSearchTrouble  = "I'm having trouble finding that specific music. Let me try something similar..."
	msgSearchError    = "I encountered an issue while searching for music. Could you try a different request?"
	msgSearchEmpty    = "I couldn't find anything playable right now. Could you try a different request?"
	msgImageFailed    = "I couldn't read your expression from that picture. Tell me how you're feeling instead?"
)

func msgGenreChoice(genre string) string {
	return fmt.Sprintf("Great choice! Let me find some %s music for you.", genre)
}

func msgOfferMusic(e lexicon.Emotion) string {
	return fmt.Sprintf("It sounds like you're feeling %s. Would you like me to find some music to match that mood?", e.Lower())
}

func msgFinding(query string) string {
	return fmt.Sprintf("Finding the perfect %s music for you...", query)
}

func msgFound(query string) string {
	return fmt.Sprintf("Perfect! I found some great %s tracks that should match your vibe perfectly.", query)
}

func msgFallbackFound(query string) string {
	return fmt.Sprintf("Here are some %s tracks that might work for you.", query)
}
