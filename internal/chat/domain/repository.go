package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListChannels(ctx context.Context, db *gorm.DB) ([]Channel, error)

	// ChannelByName returns nil when no channel matches.
	ChannelByName(ctx context.Context, db *gorm.DB, name string) (*Channel, error)

	// MessageByID returns nil when no message matches.
	MessageByID(ctx context.Context, db *gorm.DB, id string) (*Message, error)

	// ConversationByPair expects a canonical pair; nil when absent.
	ConversationByPair(ctx context.Context, db *gorm.DB, userA, userB string) (*DirectConversation, error)

	CreateConversation(ctx context.Context, db *gorm.DB, conv *DirectConversation) error

	InsertMessage(ctx context.Context, db *gorm.DB, msg *Message) error

	SaveMessage(ctx context.Context, db *gorm.DB, msg *Message) error

	// ListMessages pages one channel or conversation newest-first,
	// strictly older than the anchor message when one is given.
	ListMessages(ctx context.Context, db *gorm.DB, channelID, conversationID *string, anchor *Message, limit int) ([]Message, error)

	ListThread(ctx context.Context, db *gorm.DB, parentMessageID string, limit int) ([]Message, error)

	InsertRead(ctx context.Context, db *gorm.DB, read *MessageRead) error

	HasRead(ctx context.Context, db *gorm.DB, messageID, userID string) (bool, error)

	CountChannelMessages(ctx context.Context, db *gorm.DB, channelID string) (int64, error)

	CountChannelReads(ctx context.Context, db *gorm.DB, channelID, userID string) (int64, error)

	// CountDMUnread counts direct messages addressed to the user that
	// carry no read receipt from them.
	CountDMUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	Search(ctx context.Context, db *gorm.DB, filter SearchRequest, channelID *string, limit int) ([]Message, error)
}
