package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Channel is a named room. Names are unique; the default set is seeded
// at startup and channels are never deleted.
type Channel struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

func (Channel) TableName() string { return "chat_channels" }

// DefaultChannels are created on first boot.
var DefaultChannels = []string{"general", "packing", "management", "announcements", "support"}

// DirectConversation holds a one-to-one thread. The pair is stored in
// canonical order (UserAID <= UserBID) so each pair maps to exactly one
// row regardless of who messaged first.
type DirectConversation struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserAID   string    `gorm:"uniqueIndex:idx_chat_dm_pair;not null" json:"user_a_id"`
	UserBID   string    `gorm:"uniqueIndex:idx_chat_dm_pair;not null" json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (DirectConversation) TableName() string { return "chat_direct_conversations" }

// CanonicalPair orders two user ids lexicographically.
func CanonicalPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Message belongs to exactly one of a channel or a direct conversation.
// Deleting tombstones the content rather than removing the row, so
// thread replies and read receipts keep a valid anchor.
type Message struct {
	ID             string  `gorm:"primaryKey" json:"id"`
	ChannelID      *string `gorm:"index" json:"channel_id,omitempty"`
	ConversationID *string `gorm:"index" json:"conversation_id,omitempty"`
	SenderID       string  `gorm:"index;not null" json:"sender_id"`
	SenderName     string  `json:"sender_name"`

	Content  string     `gorm:"type:text;not null" json:"content"`
	Edited   bool       `json:"edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	ParentMessageID *string                     `gorm:"index" json:"parent_message_id,omitempty"`
	Attachments     datatypes.JSONSlice[string] `json:"attachments,omitempty"`
	Reactions       datatypes.JSONMap           `json:"reactions,omitempty"` // emoji -> []userID

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

const DeletedMessageContent = "(message deleted)"

// MessageRead is one user's read receipt for one message.
type MessageRead struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"uniqueIndex:idx_chat_msg_read;not null" json:"message_id"`
	UserID    string    `gorm:"uniqueIndex:idx_chat_msg_read;not null" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}

func (MessageRead) TableName() string { return "chat_message_reads" }
