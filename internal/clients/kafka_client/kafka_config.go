package kafka_client

const DEFAULT_GROUP_ID = "mindmate-archiver"

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
}

func NewKafkaConfig(broker, topic string) KafkaConfig {
	if topic == "" {
		topic = KAFKA_TOPIC_MOOD_ANALYSIS
	}
	return KafkaConfig{
		Broker:  broker,
		Topic:   topic,
		GroupID: DEFAULT_GROUP_ID,
	}
}

// WithGroupID returns a copy of the config using groupID for consumers.
func (c KafkaConfig) WithGroupID(groupID string) KafkaConfig {
	if groupID != "" {
		c.GroupID = groupID
	}
	return c
}
