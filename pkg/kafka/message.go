package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	PersonRecord *models.RawPersonRecord
}

// ParsePersonRecord parses the message value as a raw person record. The
// message key, when set, overrides the record's email so routing by key and
// reconciliation by email cannot disagree.
func (m *IncomingMessage) ParsePersonRecord() error {
	var record models.RawPersonRecord
	if err := json.Unmarshal(m.Value, &record); err != nil {
		return err
	}

	if m.Key != "" {
		record.Email = m.Key
	}
	if record.Email == "" {
		return fmt.Errorf("person record without email")
	}
	if record.Source == "" {
		record.Source = models.SourceKafka
	}

	m.PersonRecord = &record
	return nil
}
