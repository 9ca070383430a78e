package models

// Source identifies the feed a raw record was read from. Batches are always
// applied in the fixed order excel, mongo, xml so attribute precedence is
// deterministic.
type Source string

const (
	SourceExcel Source = "excel"
	SourceMongo Source = "mongo"
	SourceXML   Source = "xml"
	SourceKafka Source = "kafka"
)

// RawPersonRecord is the source-shaped view of one person before any
// normalization. Feeds only reshape their input into this struct; every
// parsing rule lives in the normalize package.
type RawPersonRecord struct {
	Source       Source       `json:"source"`
	Name         string       `json:"name,omitempty"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	InterestedIn string       `json:"interested_in,omitempty"`
	BirthDate    string       `json:"birth_date,omitempty"`
	Address      string       `json:"address,omitempty"`
	Hobbies      []string     `json:"hobbies,omitempty"`
	Friends      []string     `json:"friends,omitempty"`
	Likes        []RawLike    `json:"likes,omitempty"`
	Messages     []RawMessage `json:"messages,omitempty"`
}

// RawLike is a like edge as carried by the document feed. The liked user is
// referenced by email and may not exist yet.
type RawLike struct {
	LikedEmail string `json:"liked_email" bson:"liked_email"`
	Status     string `json:"status" bson:"status"`
	Timestamp  string `json:"timestamp" bson:"timestamp"`
}

// RawMessage is a sent message as carried by the document feed.
type RawMessage struct {
	ConversationID string `json:"conversation_id" bson:"conversation_id"`
	ReceiverEmail  string `json:"receiver_email" bson:"receiver_email"`
	Message        string `json:"message" bson:"message"`
	Timestamp      string `json:"timestamp" bson:"timestamp"`
}
