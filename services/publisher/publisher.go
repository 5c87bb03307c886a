package publisher

// Publisher announces enriched records to downstream consumers
type Publisher interface {
	// Publish publishes one serialized record
	Publish(message []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
