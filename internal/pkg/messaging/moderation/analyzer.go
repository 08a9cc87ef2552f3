// Package moderation gates message content before it reaches the store.
// The analysis itself is an external collaborator behind the Analyzer
// interface; the core only consumes the verdict.
package moderation

import "context"

// SentimentLabel classifies overall sentiment into five bands.
type SentimentLabel string

const (
	VeryNegative SentimentLabel = "very_negative"
	Negative     SentimentLabel = "negative"
	Neutral      SentimentLabel = "neutral"
	Positive     SentimentLabel = "positive"
	VeryPositive SentimentLabel = "very_positive"
)

// IsNegative reports whether the label falls in the negative bands.
func (l SentimentLabel) IsNegative() bool {
	return l == Negative || l == VeryNegative
}

// Verdict is the structured outcome of analyzing one piece of text.
type Verdict struct {
	Sentiment      SentimentLabel `json:"sentiment"`
	SentimentScore float64        `json:"sentiment_score"`
	Toxic          bool           `json:"toxic"`
	ToxicTerms     []string       `json:"toxic_terms,omitempty"`
	WordCount      int            `json:"word_count"`
}

// Analyzer scores text for toxicity and sentiment. Implementations should
// honor ctx deadlines; an error is a transient failure, never a verdict.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Verdict, error)
}
