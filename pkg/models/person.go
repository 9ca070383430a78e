package models

import (
	"time"
)

// Address is a canonical postal address. A row exists at most once per exact
// (street, house_no, zip_code, city) tuple.
type Address struct {
	AddressID string     `json:"address_id" db:"address_id"`
	Street    *string    `json:"street,omitempty" db:"street"`
	HouseNo   *string    `json:"house_no,omitempty" db:"house_no"`
	ZipCode   *string    `json:"zip_code,omitempty" db:"zip_code"`
	City      *string    `json:"city,omitempty" db:"city"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AddressKey is the natural key of an address.
type AddressKey struct {
	Street  *string
	HouseNo *string
	ZipCode *string
	City    *string
}

// IsEmpty reports whether the key identifies no address at all. A key with
// neither street nor city resolves to "no address" instead of an empty row.
func (k AddressKey) IsEmpty() bool {
	return deref(k.Street) == "" && deref(k.City) == ""
}

// User is a canonical person identity. Email is the sole global identity key
// across all sources.
type User struct {
	UserID       string     `json:"user_id" db:"user_id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Email        string     `json:"email" db:"email"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	BirthDate    *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	AddressID    *string    `json:"address_id,omitempty" db:"address_id"`
	InterestedIn *string    `json:"interested_in,omitempty" db:"interested_in"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest carries the attributes stored on a user's first sighting.
// Attributes are never modified on a repeat sighting (first-writer-wins).
type CreateUserRequest struct {
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        *string    `json:"phone,omitempty"`
	Email        string     `json:"email" validate:"required"`
	Gender       *string    `json:"gender,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	AddressID    *string    `json:"address_id,omitempty"`
	InterestedIn *string    `json:"interested_in,omitempty"`
}

// CreateLikeRequest carries one directed like edge by canonical user ids.
type CreateLikeRequest struct {
	LikerID  string     `json:"liker_id" validate:"required"`
	LikeeID  string     `json:"likee_id" validate:"required"`
	Status   string     `json:"status"`
	LikeTime *time.Time `json:"like_time,omitempty"`
}

// CreateMessageRequest carries one message log entry by canonical user ids.
type CreateMessageRequest struct {
	ConversationID *string    `json:"conversation_id,omitempty"`
	SenderID       string     `json:"sender_id" validate:"required"`
	ReceiverID     string     `json:"receiver_id" validate:"required"`
	MessageText    string     `json:"message_text"`
	SendTime       *time.Time `json:"send_time,omitempty"`
}

// Hobby is a flat taxonomy entry, unique by name.
type Hobby struct {
	HobbyID   string    `json:"hobby_id" db:"hobby_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserHobby links a user to a hobby with an optional priority (0-100).
type UserHobby struct {
	UserID    string    `json:"user_id" db:"user_id"`
	HobbyID   string    `json:"hobby_id" db:"hobby_id"`
	Priority  int       `json:"priority" db:"priority"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Friendship is an undirected edge stored as the ordered pair
// (min(id), max(id)) so the same pair collapses to one row from either
// direction.
type Friendship struct {
	UserIDLow  string    `json:"user_id_low" db:"user_id_low"`
	UserIDHigh string    `json:"user_id_high" db:"user_id_high"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Like is a directed edge. Self-likes are forbidden.
type Like struct {
	LikeID    string     `json:"like_id" db:"like_id"`
	LikerID   string     `json:"liker_id" db:"liker_id"`
	LikeeID   string     `json:"likee_id" db:"likee_id"`
	Status    string     `json:"status" db:"status"`
	LikeTime  *time.Time `json:"like_time,omitempty" db:"like_time"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Message is an append-only directed log entry. Self-messages are forbidden.
type Message struct {
	MessageID      string     `json:"message_id" db:"message_id"`
	ConversationID *string    `json:"conversation_id,omitempty" db:"conversation_id"`
	SenderID       string     `json:"sender_id" db:"sender_id"`
	ReceiverID     string     `json:"receiver_id" db:"receiver_id"`
	MessageText    string     `json:"message_text" db:"message_text"`
	SendTime       *time.Time `json:"send_time,omitempty" db:"send_time"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
