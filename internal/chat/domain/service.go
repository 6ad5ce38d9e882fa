package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrChannelNotFound = errors.New("channel_not_found")
	ErrMessageNotFound = errors.New("message_not_found")
	ErrNotAuthor       = errors.New("not_message_author")
	ErrEmptyMessage    = errors.New("message_required")
)

type ChannelMessagesRequest struct {
	Channel  string
	Limit    int
	BeforeID string // message id; pages return strictly older messages
}

// MessagesPage returns messages oldest-first within the page; NextBefore
// is the id to pass for the next (older) page, empty when exhausted.
type MessagesPage struct {
	Messages   []Message `json:"messages"`
	NextBefore string    `json:"next_before,omitempty"`
}

type SendChannelMessageRequest struct {
	Channel     string
	SenderID    string
	SenderName  string
	Content     string
	Attachments []string
}

type SendDirectMessageRequest struct {
	FromID      string
	FromName    string
	ToID        string
	Content     string
	Attachments []string
}

type DirectMessagesRequest struct {
	UserA    string
	UserB    string
	Limit    int
	BeforeID string
}

type ThreadReplyRequest struct {
	ParentMessageID string
	SenderID        string
	SenderName      string
	Content         string
}

type EditMessageRequest struct {
	MessageID string
	UserID    string
	Content   string
}

type SearchRequest struct {
	Query    string
	Channel  string
	SenderID string
	DateFrom *time.Time
	DateTo   *time.Time
}

// UnreadCounts carries per-channel unread totals plus a single count
// across all of the user's direct conversations.
type UnreadCounts struct {
	Channels map[string]int64 `json:"channels"`
	DMUnread int64            `json:"dm_unread"`
}

type Service interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	ChannelMessages(ctx context.Context, req ChannelMessagesRequest) (MessagesPage, error)
	SendChannelMessage(ctx context.Context, req SendChannelMessageRequest) (*Message, error)

	SendDirectMessage(ctx context.Context, req SendDirectMessageRequest) (*Message, error)
	DirectMessages(ctx context.Context, req DirectMessagesRequest) (MessagesPage, error)

	ThreadReply(ctx context.Context, req ThreadReplyRequest) (*Message, error)
	Thread(ctx context.Context, parentMessageID string, limit int) ([]Message, error)

	ToggleReaction(ctx context.Context, messageID, userID, emoji string) (map[string]any, error)
	EditMessage(ctx context.Context, req EditMessageRequest) error
	DeleteMessage(ctx context.Context, messageID, userID string) error

	MarkRead(ctx context.Context, messageID, userID string) error
	UnreadCounts(ctx context.Context, userID string) (UnreadCounts, error)

	Search(ctx context.Context, req SearchRequest) ([]Message, error)
}
