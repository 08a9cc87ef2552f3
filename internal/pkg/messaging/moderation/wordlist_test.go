package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeToxicity(t *testing.T) {
	a := NewWordListAnalyzer()

	v, err := a.Analyze(context.Background(), "you are a pathetic loser")
	require.NoError(t, err)
	assert.True(t, v.Toxic)
	assert.ElementsMatch(t, []string{"pathetic", "loser"}, v.ToxicTerms)

	v, err = a.Analyze(context.Background(), "see you at the show tonight")
	require.NoError(t, err)
	assert.False(t, v.Toxic)
	assert.Empty(t, v.ToxicTerms)
}

func TestAnalyzeConfiguredToxicTerm(t *testing.T) {
	a := NewWordListAnalyzer("spoiler")

	v, err := a.Analyze(context.Background(), "big SPOILER ahead")
	require.NoError(t, err)
	assert.True(t, v.Toxic)
	assert.Equal(t, []string{"spoiler"}, v.ToxicTerms)
}

func TestAnalyzeSentimentBands(t *testing.T) {
	a := NewWordListAnalyzer()

	cases := []struct {
		text  string
		label SentimentLabel
	}{
		{"the concert was amazing and wonderful, best night", VeryPositive},
		{"pretty good but the sound was awful at times", Neutral},
		{"terrible awful horrible show, one good song", VeryNegative},
		{"doors open at nine", Neutral},
	}

	for _, tc := range cases {
		v, err := a.Analyze(context.Background(), tc.text)
		require.NoError(t, err)
		assert.Equal(t, tc.label, v.Sentiment, "text: %s", tc.text)
	}
}

func TestAnalyzeNegativeButNotToxic(t *testing.T) {
	a := NewWordListAnalyzer()

	v, err := a.Analyze(context.Background(), "so disappointed, that was a terrible ending")
	require.NoError(t, err)
	assert.False(t, v.Toxic)
	assert.True(t, v.Sentiment.IsNegative())
}

func TestAnalyzeHonorsContext(t *testing.T) {
	a := NewWordListAnalyzer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
