package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/erayastyle/ops-hub/internal/chat/repository"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Channel{},
		&domain.DirectConversation{},
		&domain.Message{},
		&domain.MessageRead{},
	))

	require.NoError(t, db.Create(&domain.Channel{
		ID:   uuid.NewString(),
		Name: "general",
	}).Error)

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Clock: fake,
	})
	return svc, db, fake
}

func sendN(t *testing.T, svc domain.Service, fake *clock.FakeClock, channel, sender string, n int) []*domain.Message {
	t.Helper()

	sent := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		fake.Advance(time.Second)
		msg, err := svc.SendChannelMessage(context.Background(), domain.SendChannelMessageRequest{
			Channel:    channel,
			SenderID:   sender,
			SenderName: "Sender",
			Content:    fmt.Sprintf("message %02d", i),
		})
		require.NoError(t, err)
		sent = append(sent, msg)
	}
	return sent
}

func TestChannelMessagesPagination(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 7)

	page1, err := svc.ChannelMessages(ctx, domain.ChannelMessagesRequest{Channel: "general", Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Messages, 3)
	// oldest-first within the page, newest window first
	assert.Equal(t, sent[4].ID, page1.Messages[0].ID)
	assert.Equal(t, sent[6].ID, page1.Messages[2].ID)
	assert.Equal(t, sent[4].ID, page1.NextBefore)

	page2, err := svc.ChannelMessages(ctx, domain.ChannelMessagesRequest{Channel: "general", Limit: 3, BeforeID: page1.NextBefore})
	require.NoError(t, err)
	require.Len(t, page2.Messages, 3)
	assert.Equal(t, sent[1].ID, page2.Messages[0].ID)

	page3, err := svc.ChannelMessages(ctx, domain.ChannelMessagesRequest{Channel: "general", Limit: 3, BeforeID: page2.NextBefore})
	require.NoError(t, err)
	require.Len(t, page3.Messages, 1)
	assert.Equal(t, sent[0].ID, page3.Messages[0].ID)
}

func TestChannelMessagesUnknownChannel(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ChannelMessages(context.Background(), domain.ChannelMessagesRequest{Channel: "nope"})
	require.ErrorIs(t, err, domain.ErrChannelNotFound)

	_, err = svc.SendChannelMessage(context.Background(), domain.SendChannelMessageRequest{
		Channel: "nope", SenderID: "u1", Content: "hi",
	})
	require.ErrorIs(t, err, domain.ErrChannelNotFound)
}

func TestSendChannelMessageRequiresContent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendChannelMessage(context.Background(), domain.SendChannelMessageRequest{
		Channel: "general", SenderID: "u1", Content: "   ",
	})
	require.ErrorIs(t, err, domain.ErrEmptyMessage)
}

func TestDirectMessagePairCanonicalization(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()

	fake.Advance(time.Second)
	_, err := svc.SendDirectMessage(ctx, domain.SendDirectMessageRequest{
		FromID: "zoe", FromName: "Zoe", ToID: "arun", Content: "hello",
	})
	require.NoError(t, err)

	fake.Advance(time.Second)
	_, err = svc.SendDirectMessage(ctx, domain.SendDirectMessageRequest{
		FromID: "arun", FromName: "Arun", ToID: "zoe", Content: "hi back",
	})
	require.NoError(t, err)

	// both directions share one conversation row
	var conversations []domain.DirectConversation
	require.NoError(t, db.Find(&conversations).Error)
	require.Len(t, conversations, 1)
	assert.Equal(t, "arun", conversations[0].UserAID)
	assert.Equal(t, "zoe", conversations[0].UserBID)

	// and either participant sees the same history
	fromZoe, err := svc.DirectMessages(ctx, domain.DirectMessagesRequest{UserA: "zoe", UserB: "arun"})
	require.NoError(t, err)
	fromArun, err := svc.DirectMessages(ctx, domain.DirectMessagesRequest{UserA: "arun", UserB: "zoe"})
	require.NoError(t, err)
	require.Len(t, fromZoe.Messages, 2)
	assert.Equal(t, fromZoe.Messages, fromArun.Messages)
	assert.Equal(t, "hello", fromZoe.Messages[0].Content)
}

func TestThreadReplyInheritsParentLocation(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 1)

	fake.Advance(time.Second)
	reply, err := svc.ThreadReply(ctx, domain.ThreadReplyRequest{
		ParentMessageID: sent[0].ID,
		SenderID:        "u2",
		SenderName:      "Other",
		Content:         "replying",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ChannelID)
	assert.Equal(t, *sent[0].ChannelID, *reply.ChannelID)
	require.NotNil(t, reply.ParentMessageID)
	assert.Equal(t, sent[0].ID, *reply.ParentMessageID)

	thread, err := svc.Thread(ctx, sent[0].ID, 0)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, reply.ID, thread[0].ID)

	_, err = svc.ThreadReply(ctx, domain.ThreadReplyRequest{
		ParentMessageID: uuid.NewString(), SenderID: "u2", Content: "orphan",
	})
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestToggleReaction(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 1)

	reactions, err := svc.ToggleReaction(ctx, sent[0].ID, "u2", "👍")
	require.NoError(t, err)
	assert.Len(t, reactions["👍"], 1)

	reactions, err = svc.ToggleReaction(ctx, sent[0].ID, "u3", "👍")
	require.NoError(t, err)
	assert.Len(t, reactions["👍"], 2)

	// toggling again removes the user; last removal drops the emoji key
	reactions, err = svc.ToggleReaction(ctx, sent[0].ID, "u2", "👍")
	require.NoError(t, err)
	assert.Len(t, reactions["👍"], 1)

	reactions, err = svc.ToggleReaction(ctx, sent[0].ID, "u3", "👍")
	require.NoError(t, err)
	assert.NotContains(t, reactions, "👍")
}

func TestEditMessageAuthorOnly(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 1)

	err := svc.EditMessage(ctx, domain.EditMessageRequest{
		MessageID: sent[0].ID, UserID: "intruder", Content: "hijacked",
	})
	require.ErrorIs(t, err, domain.ErrNotAuthor)

	require.NoError(t, svc.EditMessage(ctx, domain.EditMessageRequest{
		MessageID: sent[0].ID, UserID: "u1", Content: "fixed typo",
	}))

	var msg domain.Message
	require.NoError(t, db.First(&msg, "id = ?", sent[0].ID).Error)
	assert.Equal(t, "fixed typo", msg.Content)
	assert.True(t, msg.Edited)
	require.NotNil(t, msg.EditedAt)
}

func TestDeleteMessageTombstones(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 1)

	require.ErrorIs(t, svc.DeleteMessage(ctx, sent[0].ID, "intruder"), domain.ErrNotAuthor)
	require.NoError(t, svc.DeleteMessage(ctx, sent[0].ID, "u1"))

	var msg domain.Message
	require.NoError(t, db.First(&msg, "id = ?", sent[0].ID).Error)
	assert.Equal(t, domain.DeletedMessageContent, msg.Content)
	assert.True(t, msg.Edited)
}

func TestUnreadCounts(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()
	sent := sendN(t, svc, fake, "general", "u1", 3)

	fake.Advance(time.Second)
	_, err := svc.SendDirectMessage(ctx, domain.SendDirectMessageRequest{
		FromID: "u1", FromName: "One", ToID: "u2", Content: "dm for you",
	})
	require.NoError(t, err)

	counts, err := svc.UnreadCounts(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Channels["general"])
	assert.Equal(t, int64(1), counts.DMUnread)

	require.NoError(t, svc.MarkRead(ctx, sent[0].ID, "u2"))
	// marking read twice stays idempotent
	require.NoError(t, svc.MarkRead(ctx, sent[0].ID, "u2"))

	counts, err = svc.UnreadCounts(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Channels["general"])

	// own direct messages never count as unread for the sender
	counts, err = svc.UnreadCounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.DMUnread)
}

func TestSearch(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()
	sendN(t, svc, fake, "general", "u1", 3)

	fake.Advance(time.Second)
	_, err := svc.SendChannelMessage(ctx, domain.SendChannelMessageRequest{
		Channel: "general", SenderID: "u2", SenderName: "Two", Content: "shipment delayed at customs",
	})
	require.NoError(t, err)

	results, err := svc.Search(ctx, domain.SearchRequest{Query: "CUSTOMS"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "u2", results[0].SenderID)

	results, err = svc.Search(ctx, domain.SearchRequest{Query: "message", SenderID: "u2"})
	require.NoError(t, err)
	assert.Empty(t, results)
}
