package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestParsePersonRecord(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{"name": "Forster, Martin", "email": "martin.forster@x.test", "hobbies": ["Kochen %80%"]}`),
	}

	require.NoError(t, msg.ParsePersonRecord())
	require.NotNil(t, msg.PersonRecord)
	assert.Equal(t, "martin.forster@x.test", msg.PersonRecord.Email)
	assert.Equal(t, models.SourceKafka, msg.PersonRecord.Source)
	assert.Equal(t, []string{"Kochen %80%"}, msg.PersonRecord.Hobbies)
}

func TestParsePersonRecordKeyOverridesEmail(t *testing.T) {
	msg := &IncomingMessage{
		Key:   "key.email@x.test",
		Value: []byte(`{"email": "body.email@x.test"}`),
	}

	require.NoError(t, msg.ParsePersonRecord())
	assert.Equal(t, "key.email@x.test", msg.PersonRecord.Email)
}

func TestParsePersonRecordRejectsMissingEmail(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`{"name": "Forster, Martin"}`)}
	require.Error(t, msg.ParsePersonRecord())
	assert.Nil(t, msg.PersonRecord)
}

func TestParsePersonRecordRejectsBadJSON(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`not json`)}
	require.Error(t, msg.ParsePersonRecord())
}

func TestParsePersonRecordKeepsExplicitSource(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{"email": "a.b@x.test", "source": "mongo"}`),
	}

	require.NoError(t, msg.ParsePersonRecord())
	assert.Equal(t, models.SourceMongo, msg.PersonRecord.Source)
}
