package sentiment

import (
	"strings"

	"github.com/spacesedan/mindmate/internal/models"
)

const (
	baselineStress    = 5
	minStress         = 1
	maxStress         = 10
	crisisStressFloor = 9

	maxAnxietyContribution = 2
	shortMessageWords      = 10
	longMessageWords       = 100
	exclamationThreshold   = 3
)

func (a *Analyzer) stressLevel(text string, sentiment models.Sentiment, topics []models.KeywordMatch, isCrisis bool) int {
	score := baselineStress

	switch sentiment.Label {
	case models.SentimentNegative:
		score += min(sentiment.NegativeHits, 3)
	case models.SentimentPositive:
		score -= min(sentiment.PositiveHits, 2)
	}

	for _, t := range topics {
		if _, ok := a.stressTopics[t.Name]; ok {
			score++
		}
	}

	anxiety := 0
	for _, marker := range a.lexicon.AnxietyMarkers {
		if strings.Contains(text, marker) {
			anxiety++
		}
	}
	score += min(anxiety, maxAnxietyContribution)

	// very short messages often mean withdrawal, very long ones rumination
	words := len(strings.Fields(text))
	if words < shortMessageWords || words > longMessageWords {
		score++
	}

	if strings.Count(text, "!") > exclamationThreshold {
		score++
	}

	if isCrisis {
		score = max(score, crisisStressFloor)
	}

	return clampStress(score)
}

func clampStress(score int) int {
	return max(minStress, min(maxStress, score))
}
