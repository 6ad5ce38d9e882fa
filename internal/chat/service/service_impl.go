package service

import (
	"context"
	"strings"

	"github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	searchLimit     = 200
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("chat.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return s.repo.ListChannels(ctx, s.db)
}

func (s *Service) ChannelMessages(ctx context.Context, req domain.ChannelMessagesRequest) (domain.MessagesPage, error) {
	channel, err := s.repo.ChannelByName(ctx, s.db, req.Channel)
	if err != nil {
		return domain.MessagesPage{}, err
	}
	if channel == nil {
		return domain.MessagesPage{}, domain.ErrChannelNotFound
	}

	anchor, err := s.resolveAnchor(ctx, req.BeforeID)
	if err != nil {
		return domain.MessagesPage{}, err
	}

	messages, err := s.repo.ListMessages(ctx, s.db, &channel.ID, nil, anchor, clampLimit(req.Limit))
	if err != nil {
		return domain.MessagesPage{}, err
	}
	return buildPage(messages), nil
}

func (s *Service) SendChannelMessage(ctx context.Context, req domain.SendChannelMessageRequest) (*domain.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}

	channel, err := s.repo.ChannelByName(ctx, s.db, req.Channel)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, domain.ErrChannelNotFound
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		ChannelID:   &channel.ID,
		SenderID:    req.SenderID,
		SenderName:  req.SenderName,
		Content:     content,
		Attachments: datatypes.JSONSlice[string](req.Attachments),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.InsertMessage(ctx, s.db, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) SendDirectMessage(ctx context.Context, req domain.SendDirectMessageRequest) (*domain.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}

	var msg *domain.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userA, userB := domain.CanonicalPair(req.FromID, req.ToID)
		conv, err := s.repo.ConversationByPair(ctx, tx, userA, userB)
		if err != nil {
			return err
		}
		if conv == nil {
			conv = &domain.DirectConversation{
				ID:        uuid.NewString(),
				UserAID:   userA,
				UserBID:   userB,
				CreatedAt: s.clock.Now(),
			}
			if err := s.repo.CreateConversation(ctx, tx, conv); err != nil {
				return err
			}
		}

		msg = &domain.Message{
			ID:             uuid.NewString(),
			ConversationID: &conv.ID,
			SenderID:       req.FromID,
			SenderName:     req.FromName,
			Content:        content,
			Attachments:    datatypes.JSONSlice[string](req.Attachments),
			CreatedAt:      s.clock.Now(),
		}
		return s.repo.InsertMessage(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) DirectMessages(ctx context.Context, req domain.DirectMessagesRequest) (domain.MessagesPage, error) {
	userA, userB := domain.CanonicalPair(req.UserA, req.UserB)
	conv, err := s.repo.ConversationByPair(ctx, s.db, userA, userB)
	if err != nil {
		return domain.MessagesPage{}, err
	}
	if conv == nil {
		return domain.MessagesPage{Messages: []domain.Message{}}, nil
	}

	anchor, err := s.resolveAnchor(ctx, req.BeforeID)
	if err != nil {
		return domain.MessagesPage{}, err
	}

	messages, err := s.repo.ListMessages(ctx, s.db, nil, &conv.ID, anchor, clampLimit(req.Limit))
	if err != nil {
		return domain.MessagesPage{}, err
	}
	return buildPage(messages), nil
}

func (s *Service) ThreadReply(ctx context.Context, req domain.ThreadReplyRequest) (*domain.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}

	parent, err := s.repo.MessageByID(ctx, s.db, req.ParentMessageID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrMessageNotFound
	}

	reply := &domain.Message{
		ID:              uuid.NewString(),
		ChannelID:       parent.ChannelID,
		ConversationID:  parent.ConversationID,
		SenderID:        req.SenderID,
		SenderName:      req.SenderName,
		Content:         content,
		ParentMessageID: &parent.ID,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.InsertMessage(ctx, s.db, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *Service) Thread(ctx context.Context, parentMessageID string, limit int) ([]domain.Message, error) {
	return s.repo.ListThread(ctx, s.db, parentMessageID, clampLimit(limit))
}

// ToggleReaction adds the user to the emoji's reaction list, or removes
// them when already present. Empty lists drop out of the map.
func (s *Service) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (map[string]any, error) {
	var reactions map[string]any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, err := s.repo.MessageByID(ctx, tx, messageID)
		if err != nil {
			return err
		}
		if msg == nil {
			return domain.ErrMessageNotFound
		}

		if msg.Reactions == nil {
			msg.Reactions = datatypes.JSONMap{}
		}

		users := reactionUsers(msg.Reactions, emoji)
		removed := false
		for i, id := range users {
			if id == userID {
				users = append(users[:i], users[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			users = append(users, userID)
		}

		if len(users) == 0 {
			delete(msg.Reactions, emoji)
		} else {
			asAny := make([]any, len(users))
			for i, id := range users {
				asAny[i] = id
			}
			msg.Reactions[emoji] = asAny
		}

		reactions = msg.Reactions
		return s.repo.SaveMessage(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

func (s *Service) EditMessage(ctx context.Context, req domain.EditMessageRequest) error {
	msg, err := s.repo.MessageByID(ctx, s.db, req.MessageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return domain.ErrMessageNotFound
	}
	if msg.SenderID != req.UserID {
		return domain.ErrNotAuthor
	}

	now := s.clock.Now()
	msg.Content = req.Content
	msg.Edited = true
	msg.EditedAt = &now
	return s.repo.SaveMessage(ctx, s.db, msg)
}

func (s *Service) DeleteMessage(ctx context.Context, messageID, userID string) error {
	msg, err := s.repo.MessageByID(ctx, s.db, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return domain.ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return domain.ErrNotAuthor
	}

	now := s.clock.Now()
	msg.Content = domain.DeletedMessageContent
	msg.Edited = true
	msg.EditedAt = &now
	return s.repo.SaveMessage(ctx, s.db, msg)
}

func (s *Service) MarkRead(ctx context.Context, messageID, userID string) error {
	read, err := s.repo.HasRead(ctx, s.db, messageID, userID)
	if err != nil {
		return err
	}
	if read {
		return nil
	}
	return s.repo.InsertRead(ctx, s.db, &domain.MessageRead{
		ID:        uuid.NewString(),
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    s.clock.Now(),
	})
}

func (s *Service) UnreadCounts(ctx context.Context, userID string) (domain.UnreadCounts, error) {
	channels, err := s.repo.ListChannels(ctx, s.db)
	if err != nil {
		return domain.UnreadCounts{}, err
	}

	counts := domain.UnreadCounts{Channels: make(map[string]int64, len(channels))}
	for _, channel := range channels {
		total, err := s.repo.CountChannelMessages(ctx, s.db, channel.ID)
		if err != nil {
			return domain.UnreadCounts{}, err
		}
		read, err := s.repo.CountChannelReads(ctx, s.db, channel.ID, userID)
		if err != nil {
			return domain.UnreadCounts{}, err
		}
		unread := total - read
		if unread < 0 {
			unread = 0
		}
		counts.Channels[channel.Name] = unread
	}

	dmUnread, err := s.repo.CountDMUnread(ctx, s.db, userID)
	if err != nil {
		return domain.UnreadCounts{}, err
	}
	counts.DMUnread = dmUnread
	return counts, nil
}

func (s *Service) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Message, error) {
	var channelID *string
	if req.Channel != "" {
		channel, err := s.repo.ChannelByName(ctx, s.db, req.Channel)
		if err != nil {
			return nil, err
		}
		if channel == nil {
			return []domain.Message{}, nil
		}
		channelID = &channel.ID
	}
	return s.repo.Search(ctx, s.db, req, channelID, searchLimit)
}

func (s *Service) resolveAnchor(ctx context.Context, beforeID string) (*domain.Message, error) {
	if beforeID == "" {
		return nil, nil
	}
	// Unknown anchors fall back to the first page rather than erroring.
	return s.repo.MessageByID(ctx, s.db, beforeID)
}

// buildPage reverses a newest-first batch into display order and keeps
// the oldest message's id as the next paging anchor.
func buildPage(messages []domain.Message) domain.MessagesPage {
	page := domain.MessagesPage{Messages: make([]domain.Message, 0, len(messages))}
	if len(messages) == 0 {
		return page
	}
	page.NextBefore = messages[len(messages)-1].ID
	for i := len(messages) - 1; i >= 0; i-- {
		page.Messages = append(page.Messages, messages[i])
	}
	return page
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func reactionUsers(reactions datatypes.JSONMap, emoji string) []string {
	raw, ok := reactions[emoji]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	users := make([]string, 0, len(list))
	for _, v := range list {
		if id, ok := v.(string); ok {
			users = append(users, id)
		}
	}
	return users
}
