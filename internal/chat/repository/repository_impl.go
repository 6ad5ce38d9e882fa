package repository

import (
	"context"
	"strings"

	"github.com/erayastyle/ops-hub/internal/chat/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := db.WithContext(ctx).Order("name asc").Find(&channels).Error
	return channels, err
}

func (r *repo) ChannelByName(ctx context.Context, db *gorm.DB, name string) (*domain.Channel, error) {
	var channel domain.Channel
	err := db.WithContext(ctx).Where("name = ?", name).First(&channel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *repo) MessageByID(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var msg domain.Message
	err := db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *repo) ConversationByPair(ctx context.Context, db *gorm.DB, userA, userB string) (*domain.DirectConversation, error) {
	var conv domain.DirectConversation
	err := db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", userA, userB).
		First(&conv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *repo) CreateConversation(ctx context.Context, db *gorm.DB, conv *domain.DirectConversation) error {
	return db.WithContext(ctx).Create(conv).Error
}

func (r *repo) InsertMessage(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) SaveMessage(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Save(msg).Error
}

func (r *repo) ListMessages(ctx context.Context, db *gorm.DB, channelID, conversationID *string, anchor *domain.Message, limit int) ([]domain.Message, error) {
	stmt := db.WithContext(ctx).Model(&domain.Message{})
	if channelID != nil {
		stmt = stmt.Where("channel_id = ?", *channelID)
	}
	if conversationID != nil {
		stmt = stmt.Where("conversation_id = ?", *conversationID)
	}
	if anchor != nil {
		stmt = stmt.Where("created_at < ?", anchor.CreatedAt)
	}

	var messages []domain.Message
	err := stmt.Order("created_at desc").Limit(limit).Find(&messages).Error
	return messages, err
}

func (r *repo) ListThread(ctx context.Context, db *gorm.DB, parentMessageID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := db.WithContext(ctx).
		Where("parent_message_id = ?", parentMessageID).
		Order("created_at asc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *repo) InsertRead(ctx context.Context, db *gorm.DB, read *domain.MessageRead) error {
	return db.WithContext(ctx).Create(read).Error
}

func (r *repo) HasRead(ctx context.Context, db *gorm.DB, messageID, userID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.MessageRead{}).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) CountChannelMessages(ctx context.Context, db *gorm.DB, channelID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

func (r *repo) CountChannelReads(ctx context.Context, db *gorm.DB, channelID, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.MessageRead{}).
		Joins("JOIN chat_messages ON chat_messages.id = chat_message_reads.message_id").
		Where("chat_message_reads.user_id = ? AND chat_messages.channel_id = ?", userID, channelID).
		Count(&count).Error
	return count, err
}

func (r *repo) CountDMUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var incoming int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Joins("JOIN chat_direct_conversations ON chat_direct_conversations.id = chat_messages.conversation_id").
		Where("chat_messages.sender_id <> ?", userID).
		Where("chat_direct_conversations.user_a_id = ? OR chat_direct_conversations.user_b_id = ?", userID, userID).
		Count(&incoming).Error
	if err != nil {
		return 0, err
	}

	var read int64
	err = db.WithContext(ctx).
		Model(&domain.MessageRead{}).
		Joins("JOIN chat_messages ON chat_messages.id = chat_message_reads.message_id").
		Joins("JOIN chat_direct_conversations ON chat_direct_conversations.id = chat_messages.conversation_id").
		Where("chat_message_reads.user_id = ?", userID).
		Where("chat_messages.sender_id <> ?", userID).
		Where("chat_direct_conversations.user_a_id = ? OR chat_direct_conversations.user_b_id = ?", userID, userID).
		Count(&read).Error
	if err != nil {
		return 0, err
	}

	unread := incoming - read
	if unread < 0 {
		unread = 0
	}
	return unread, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, filter domain.SearchRequest, channelID *string, limit int) ([]domain.Message, error) {
	stmt := db.WithContext(ctx).Model(&domain.Message{})
	if channelID != nil {
		stmt = stmt.Where("channel_id = ?", *channelID)
	}
	if filter.SenderID != "" {
		stmt = stmt.Where("sender_id = ?", filter.SenderID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = stmt.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.DateTo)
	}

	var messages []domain.Message
	err := stmt.Order("created_at desc").Limit(limit).Find(&messages).Error
	return messages, err
}
