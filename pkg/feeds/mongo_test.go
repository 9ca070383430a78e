package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestRecordFromDocument(t *testing.T) {
	doc := mongoUserDocument{
		Email:   " martin.forster@x.test ",
		Name:    "forster, martin",
		Phone:   "0201 / 99 88 77",
		Friends: []string{"ellen.wickern@x.test"},
		Likes: []models.RawLike{
			{LikedEmail: "ellen.wickern@x.test", Status: "superlike", Timestamp: "2024-03-17 07:39:29"},
		},
		Messages: []models.RawMessage{
			{ConversationID: "conv-1", ReceiverEmail: "ellen.wickern@x.test", Message: "Hallo", Timestamp: "2024-03-17 07:40:00"},
		},
	}

	rec := recordFromDocument(doc)
	assert.Equal(t, models.SourceMongo, rec.Source)
	assert.Equal(t, "martin.forster@x.test", rec.Email)
	assert.Equal(t, "forster, martin", rec.Name)
	assert.Equal(t, "0201 / 99 88 77", rec.Phone)
	assert.Equal(t, []string{"ellen.wickern@x.test"}, rec.Friends)
	assert.Equal(t, doc.Likes, rec.Likes)
	assert.Equal(t, doc.Messages, rec.Messages)
}

func TestRecordFromDocumentEmpty(t *testing.T) {
	rec := recordFromDocument(mongoUserDocument{})
	assert.Equal(t, models.SourceMongo, rec.Source)
	assert.Empty(t, rec.Email)
	assert.Empty(t, rec.Friends)
	assert.Empty(t, rec.Likes)
	assert.Empty(t, rec.Messages)
}
