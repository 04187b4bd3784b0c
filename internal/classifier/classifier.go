// Package classifier turns a free-text utterance into a mood signal using
// the lexicon's keyword tables only. It never calls out to a model.
//
// Matching runs in strict priority order and the first hit wins:
//
//  1. direct genre request
//  2. contextual scenario
//  3. emotion synonym
//
// Anything else is Unclassified and left to the analyzer.
package classifier

import (
	"strings"

	"github.com/justestif/go-mood-music/internal/lexicon"
)

// Kind identifies which rule produced a Result.
type Kind int

// Result kinds in priority order.
const (
	Unclassified Kind = iota
	DirectGenre
	Scenario
	Synonym
)

func (k Kind) String() string {
	switch k {
	case DirectGenre:
		return "genre"
	case Scenario:
		return "scenario"
	case Synonym:
		return "synonym"
	default:
		return "unclassified"
	}
}

// Result is the outcome of Classify. Fields not relevant to Kind are zero.
type Result struct {
	Kind      Kind
	Keyword   string // the keyword that fired
	Genre     string // DirectGenre
	Scenario  *lexicon.ScenarioRule
	Emotion   lexicon.Emotion // Scenario, Synonym
	Intensity lexicon.Tier    // Scenario, Synonym
}

// triggers introduce an explicit request ("play jazz", "some songs ...").
var triggers = map[string]bool{
	"play":   true,
	"listen": true,
	"music":  true,
	"song":   true,
	"songs":  true,
	"tracks": true,
}

// Classify runs the keyword tiers against utterance.
func Classify(lex *lexicon.Lexicon, utterance string) Result {
	lower := strings.ToLower(utterance)
	tokens := Tokenize(lower)

	if genre, kw, ok := matchGenre(lex.Genres(), tokens); ok {
		return Result{Kind: DirectGenre, Genre: genre, Keyword: kw}
	}

	for _, rule := range lex.Scenarios() {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return Result{
					Kind:      Scenario,
					Keyword:   kw,
					Scenario:  &rule,
					Emotion:   rule.Emotion,
					Intensity: rule.Intensity,
				}
			}
		}
	}

	for _, p := range lex.Profiles() {
		for _, syn := range p.Synonyms {
			if containsPhrase(tokens, Tokenize(syn)) {
				return Result{Kind: Synonym, Keyword: syn, Emotion: p.Emotion, Intensity: lexicon.Medium}
			}
		}
	}

	return Result{Kind: Unclassified}
}

// matchGenre prefers a keyword right after a trigger word, then any keyword
// anywhere, both in table order.
func matchGenre(table []lexicon.GenreKeywords, tokens []string) (string, string, bool) {
	for i, tok := range tokens {
		if !triggers[tok] {
			continue
		}
		// "listen to jazz"
		next := i + 1
		if tok == "listen" && next < len(tokens) && tokens[next] == "to" {
			next++
		}
		for _, g := range table {
			for _, kw := range g.Keywords {
				if hasPhraseAt(tokens, Tokenize(kw), next) {
					return g.Genre, kw, true
				}
			}
		}
	}

	for _, g := range table {
		for _, kw := range g.Keywords {
			if containsPhrase(tokens, Tokenize(kw)) {
				return g.Genre, kw, true
			}
		}
	}
	return "", "", false
}

// Tokenize lower-cases s and splits it into word tokens. Letters, digits and
// the characters & ' - stay inside a token so "r&b", "lo-fi" and "can't"
// survive intact.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		case r == '&', r == '\'', r == '-':
			return false
		default:
			return true
		}
	})
}

func containsPhrase(tokens, phrase []string) bool {
	for i := range tokens {
		if hasPhraseAt(tokens, phrase, i) {
			return true
		}
	}
	return false
}

func hasPhraseAt(tokens, phrase []string, at int) bool {
	if len(phrase) == 0 || at < 0 || at+len(phrase) > len(tokens) {
		return false
	}
	for j, p := range phrase {
		if tokens[at+j] != p {
			return false
		}
	}
	return true
}
