// Package lexicon holds the mood vocabulary shared by the classifier, the
// resolver and the conversation engine: emotion profiles, genre request
// keywords and contextual scenarios.
//
// All tables are built once when the package is initialised and never
// mutated afterwards. Table order is meaningful: the classifier breaks ties
// by the order in which entries appear here.
package lexicon

import (
	"slices"
	"strings"
)

// Emotion is one value of the closed emotion enumeration.
type Emotion string

// Supported emotions, in classifier tie-break order.
const (
	Happy     Emotion = "Happy"
	Sad       Emotion = "Sad"
	Angry     Emotion = "Angry"
	Anxious   Emotion = "Anxious"
	Excited   Emotion = "Excited"
	Romantic  Emotion = "Romantic"
	Nostalgic Emotion = "Nostalgic"
	Motivated Emotion = "Motivated"
	Peaceful  Emotion = "Peaceful"
	Neutral   Emotion = "Neutral"
)

// emotionOrder is the documented, stable enumeration order.
var emotionOrder = []Emotion{
	Happy, Sad, Angry, Anxious, Excited, Romantic, Nostalgic, Motivated, Peaceful, Neutral,
}

// aliases maps labels produced by image classifiers onto supported emotions.
var aliases = map[string]Emotion{
	"disgust":  Angry,
	"fear":     Anxious,
	"surprise": Excited,
}

// ParseEmotion parses a label case-insensitively. Classifier aliases such as
// "Fear" or "Surprise" are accepted. Returns false for unknown labels.
func ParseEmotion(label string) (Emotion, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "", false
	}
	for _, e := range emotionOrder {
		if strings.ToLower(string(e)) == s {
			return e, true
		}
	}
	if e, ok := aliases[s]; ok {
		return e, true
	}
	return "", false
}

// Normalize returns the emotion for label, substituting Neutral for any
// label outside the enumeration.
func Normalize(label string) Emotion {
	if e, ok := ParseEmotion(label); ok {
		return e
	}
	return Neutral
}

// Lower returns the emotion name in lower case, for use inside sentences.
func (e Emotion) Lower() string {
	return strings.ToLower(string(e))
}

// Tier narrows an emotion's genre pool.
type Tier string

// Intensity tiers.
const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
)

// ParseTier parses an intensity tier, defaulting to Medium.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Low:
		return Low
	case High:
		return High
	default:
		return Medium
	}
}

// Profile describes how one emotion maps onto music.
type Profile struct {
	Emotion       Emotion
	Genres        []string
	Tiers         map[Tier][]string
	Synonyms      []string
	ConfirmPrompt string // initial confirmation prompt for an external guess
	MusicPrompt   string // follow-up offer once the mood is confirmed
}

// TierGenres returns the narrowed genre list for tier, or nil when absent.
func (p Profile) TierGenres(t Tier) []string {
	return slices.Clone(p.Tiers[t])
}

// ScenarioRule is a situational keyword cluster implying an emotion and a
// genre pool directly.
type ScenarioRule struct {
	Name      string
	Keywords  []string
	Emotion   Emotion
	Intensity Tier
	Response  string
	Genres    []string
}

// GenreKeywords lists the keywords that identify a direct genre request.
type GenreKeywords struct {
	Genre    string
	Keywords []string
}

// Lexicon is the immutable vocabulary table set.
type Lexicon struct {
	profiles  map[Emotion]Profile
	scenarios []ScenarioRule
	genres    []GenreKeywords
}

var defaultLexicon = build()

// Default returns the process-wide lexicon.
func Default() *Lexicon {
	return defaultLexicon
}

// Profile returns the profile for e. Unknown emotions return the Neutral
// profile and false.
func (l *Lexicon) Profile(e Emotion) (Profile, bool) {
	p, ok := l.profiles[e]
	if !ok {
		return cloneProfile(l.profiles[Neutral]), false
	}
	return cloneProfile(p), true
}

// Profiles returns every profile in enumeration order.
func (l *Lexicon) Profiles() []Profile {
	out := make([]Profile, 0, len(emotionOrder))
	for _, e := range emotionOrder {
		out = append(out, cloneProfile(l.profiles[e]))
	}
	return out
}

// EmotionOrder returns the enumeration order used for tie-breaking.
func (l *Lexicon) EmotionOrder() []Emotion {
	return slices.Clone(emotionOrder)
}

// Scenarios returns the scenario rules in match order.
func (l *Lexicon) Scenarios() []ScenarioRule {
	out := make([]ScenarioRule, len(l.scenarios))
	for i, s := range l.scenarios {
		s.Keywords = slices.Clone(s.Keywords)
		s.Genres = slices.Clone(s.Genres)
		out[i] = s
	}
	return out
}

// Genres returns the genre keyword table in match order.
func (l *Lexicon) Genres() []GenreKeywords {
	out := make([]GenreKeywords, len(l.genres))
	for i, g := range l.genres {
		out[i] = GenreKeywords{Genre: g.Genre, Keywords: slices.Clone(g.Keywords)}
	}
	return out
}

func cloneProfile(p Profile) Profile {
	p.Genres = slices.Clone(p.Genres)
	p.Synonyms = slices.Clone(p.Synonyms)
	tiers := make(map[Tier][]string, len(p.Tiers))
	for t, g := range p.Tiers {
		tiers[t] = slices.Clone(g)
	}
	p.Tiers = tiers
	return p
}

func confirmPrompt(e Emotion) string {
	return "I'm picking up that you might be feeling " + e.Lower() +
		" right now. Tell me a bit about what's going on with you - I'd love to understand your mood better and find the perfect music to match."
}
