package sentiment

import (
	"math"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/mindmate/internal/models"
)

// PolarityScorer produces auxiliary polarity scores.
// *govader.SentimentIntensityAnalyzer satisfies it.
type PolarityScorer interface {
	PolarityScores(text string) govader.Sentiment
}

func NewVADERScorer() PolarityScorer {
	return govader.NewSentimentIntensityAnalyzer()
}

func toPolarity(s govader.Sentiment) models.Polarity {
	return models.Polarity{
		Compound: round(s.Compound, 4),
		Positive: round(s.Positive, 4),
		Neutral:  round(s.Neutral, 4),
		Negative: round(s.Negative, 4),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
