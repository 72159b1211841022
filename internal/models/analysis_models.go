package models

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
	SentimentError    SentimentLabel = "ERROR"
)

// Polarity holds the VADER scores computed alongside the lexicon counts.
// They are informational only and never decide the label.
type Polarity struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type Sentiment struct {
	Label        SentimentLabel `json:"label"`
	PositiveHits int            `json:"positive_hits"`
	NegativeHits int            `json:"negative_hits"`
	Polarity     Polarity       `json:"polarity"`
}

// KeywordMatch is a detected topic or emotion category
type KeywordMatch struct {
	Name          string   `json:"name"`
	KeywordsFound []string `json:"keywords_found"`
	Confidence    float64  `json:"confidence"`
}

type TextMetrics struct {
	WordCount   int     `json:"word_count"`
	Readability float64 `json:"readability_score"`
}

// Analysis is the result of classifying a single user message.
type Analysis struct {
	TextOriginal    string         `json:"text_original"`
	TextCleaned     string         `json:"text_cleaned"`
	Sentiment       Sentiment      `json:"sentiment"`
	Topics          []KeywordMatch `json:"topics"`
	Emotions        []KeywordMatch `json:"emotions"`
	StressLevel     int            `json:"stress_level"`
	IsCrisis        bool           `json:"is_crisis"`
	CrisisWords     []string       `json:"crisis_words_found"`
	Metrics         TextMetrics    `json:"metrics"`
	Recommendations []string       `json:"recommendations"`
	Error           string         `json:"error,omitempty"`
}

// TopicNames returns topic names in result order
func (a Analysis) TopicNames() []string {
	names := make([]string, 0, len(a.Topics))
	for _, t := range a.Topics {
		names = append(names, t.Name)
	}
	return names
}

// AnalysisRecord is the archived form of an analysis, keyed for DynamoDB.
type AnalysisRecord struct {
	RecordID    string    `json:"record_id" dynamodbav:"record_id"`
	UserID      int64     `json:"user_id" dynamodbav:"user_id"`
	Sentiment   string    `json:"sentiment" dynamodbav:"sentiment"`
	StressLevel int       `json:"stress_level" dynamodbav:"stress_level"`
	Topics      []string  `json:"topics" dynamodbav:"topics,omitempty"`
	IsCrisis    bool      `json:"is_crisis" dynamodbav:"is_crisis"`
	CrisisWords []string  `json:"crisis_words" dynamodbav:"crisis_words,omitempty"`
	WordCount   int       `json:"word_count" dynamodbav:"word_count"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt   int64     `json:"-" dynamodbav:"ttl"`
}

// AnalysisEvent is published to Kafka after every analyzed message
type AnalysisEvent struct {
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	Analysis  Analysis  `json:"analysis"`
	CreatedAt time.Time `json:"created_at"`
}
