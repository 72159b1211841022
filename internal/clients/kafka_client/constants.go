package kafka_client

import "time"

const (
	KAFKA_TOPIC_MOOD_ANALYSIS = "mood-analysis" // one event per analyzed user message
)

const (
	MAX_RETRIES    = 5
	RETRY_DELAY    = 2 * time.Second
	FLUSH_TIMEOUT  = 5000 // ms
	DELIVERY_LIMIT = 10 * time.Second
	POLL_TIMEOUT   = time.Second
)
