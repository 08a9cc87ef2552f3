package moderation

import (
	"context"
	"strings"
	"unicode"
)

// Default word lists. Deployments extend these via NewWordListAnalyzer.
var (
	defaultToxicWords = []string{
		"hate", "stupid", "idiot", "dumb", "kill", "die", "death",
		"loser", "failure", "worthless", "pathetic", "disgusting",
	}

	defaultNegativeWords = []string{
		"bad", "terrible", "awful", "horrible", "worst", "hate",
		"angry", "sad", "depressed", "upset", "disappointed",
		"frustrating", "annoying", "useless", "broken", "failed",
	}

	defaultPositiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful", "love",
		"happy", "excited", "best", "awesome", "fantastic",
		"perfect", "beautiful", "brilliant", "outstanding", "superb",
	}
)

// WordListAnalyzer scores text against fixed word lists. Any toxic word
// makes the text toxic; sentiment is the share of positive words among all
// sentiment-bearing words, banded into five labels.
type WordListAnalyzer struct {
	toxic    map[string]struct{}
	negative map[string]struct{}
	positive map[string]struct{}
}

// NewWordListAnalyzer builds an analyzer from the default lists plus any
// extra toxic terms a deployment configures.
func NewWordListAnalyzer(extraToxic ...string) *WordListAnalyzer {
	return &WordListAnalyzer{
		toxic:    toSet(append(defaultToxicWords, extraToxic...)),
		negative: toSet(defaultNegativeWords),
		positive: toSet(defaultPositiveWords),
	}
}

var _ Analyzer = (*WordListAnalyzer)(nil)

// Analyze never fails on its own; it still checks ctx so a caller-imposed
// deadline behaves the same as it would with a remote analyzer.
func (a *WordListAnalyzer) Analyze(ctx context.Context, text string) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	words := tokenize(text)

	var toxicFound []string
	seen := make(map[string]struct{})
	positiveCount, negativeCount := 0, 0
	for _, w := range words {
		if _, ok := a.toxic[w]; ok {
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				toxicFound = append(toxicFound, w)
			}
		}
		if _, ok := a.positive[w]; ok {
			positiveCount++
		}
		if _, ok := a.negative[w]; ok {
			negativeCount++
		}
	}

	score := 0.5
	if total := positiveCount + negativeCount; total > 0 {
		score = float64(positiveCount) / float64(total)
	}

	return Verdict{
		Sentiment:      labelFor(score),
		SentimentScore: score,
		Toxic:          len(toxicFound) > 0,
		ToxicTerms:     toxicFound,
		WordCount:      len(words),
	}, nil
}

func labelFor(score float64) SentimentLabel {
	switch {
	case score >= 0.7:
		return VeryPositive
	case score >= 0.55:
		return Positive
	case score >= 0.45:
		return Neutral
	case score >= 0.3:
		return Negative
	default:
		return VeryNegative
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
