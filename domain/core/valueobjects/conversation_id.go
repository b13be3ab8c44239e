package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ConversationID identifies a conversation thread
type ConversationID struct {
	value string
}

// NewConversationID creates a new random ConversationID
func NewConversationID() ConversationID {
	return ConversationID{value: uuid.New().String()}
}

// NewConversationIDFromString creates a ConversationID from an existing string
func NewConversationIDFromString(id string) (ConversationID, error) {
	if id == "" {
		return ConversationID{}, errors.New("conversation ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ConversationID{}, errors.New("conversation ID must be a valid UUID")
	}
	return ConversationID{value: id}, nil
}

// String returns the string representation of the ConversationID
func (id ConversationID) String() string {
	return id.value
}

// IsZero checks if the ConversationID is the zero value
func (id ConversationID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ConversationID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ConversationID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ConversationID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
