package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/database"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/models"
	"proconnect/backend/internal/presence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, n int) []models.User {
	t.Helper()
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{
			Username:     fmt.Sprintf("user%d", i+1),
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: "x",
			FullName:     fmt.Sprintf("User %d", i+1),
			Profession:   "Engineer",
		}
		require.NoError(t, db.Create(&users[i]).Error)
	}
	return users
}

func connect(t *testing.T, svc *graph.Service, a, b uint) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Request(ctx, a, b)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, b, a)
	require.NoError(t, err)
}

func newRouter(t *testing.T) (*Router, *graph.Service, *presence.Registry, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	g := graph.NewService(db)
	reg := presence.NewRegistry()
	return NewRouter(db, g, reg), g, reg, db
}

func messageCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	return count
}

func TestSendRequiresConnection(t *testing.T) {
	router, _, _, db := newRouter(t)
	users := seedUsers(t, db, 2)

	_, err := router.Send(context.Background(), users[0].ID, users[1].ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	// The authorization check runs before the durability write.
	assert.EqualValues(t, 0, messageCount(t, db))
}

func TestSendRejectsBadInput(t *testing.T) {
	router, g, _, db := newRouter(t)
	users := seedUsers(t, db, 2)
	connect(t, g, users[0].ID, users[1].ID)
	ctx := context.Background()

	_, err := router.Send(ctx, users[0].ID, users[0].ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = router.Send(ctx, users[0].ID, users[1].ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	assert.EqualValues(t, 0, messageCount(t, db))
}

func TestSendPersistsAndPushesToLiveChannel(t *testing.T) {
	router, g, reg, db := newRouter(t)
	users := seedUsers(t, db, 2)
	connect(t, g, users[0].ID, users[1].ID)

	ch, _ := reg.Register(users[1].ID)

	msg, err := router.Send(context.Background(), users[0].ID, users[1].ID, "hi")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	var event struct {
		Type    string         `json:"type"`
		Message MessagePayload `json:"message"`
	}
	require.NoError(t, json.Unmarshal(<-ch, &event))
	assert.Equal(t, presence.EventTypeNewMessage, event.Type)
	assert.Equal(t, "hi", event.Message.Content)
	assert.Equal(t, users[0].ID, event.Message.SenderID)
	assert.Equal(t, msg.ID, event.Message.ID)
}

func TestSendSucceedsWithOfflineReceiver(t *testing.T) {
	router, g, _, db := newRouter(t)
	users := seedUsers(t, db, 2)
	connect(t, g, users[0].ID, users[1].ID)

	msg, err := router.Send(context.Background(), users[0].ID, users[1].ID, "hi")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.EqualValues(t, 1, messageCount(t, db))
}

func TestConversationOrderAndReadMarking(t *testing.T) {
	router, g, _, db := newRouter(t)
	users := seedUsers(t, db, 2)
	connect(t, g, users[0].ID, users[1].ID)
	ctx := context.Background()

	_, err := router.Send(ctx, users[0].ID, users[1].ID, "hello")
	require.NoError(t, err)
	_, err = router.Send(ctx, users[1].ID, users[0].ID, "hey")
	require.NoError(t, err)
	_, err = router.Send(ctx, users[0].ID, users[1].ID, "how are you?")
	require.NoError(t, err)

	count, err := router.UnreadCount(ctx, users[1].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	messages, err := router.Conversation(ctx, users[1].ID, users[0].ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "hey", messages[1].Content)
	assert.Equal(t, "how are you?", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}

	// Fetching the conversation marks the other side's messages read.
	count, err = router.UnreadCount(ctx, users[1].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// The sender's own unread count is untouched by the fetch above.
	count, err = router.UnreadCount(ctx, users[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

// Full lifecycle: request, accept, live delivery while registered, offline
// persistence after disconnect, ordered backfill at the end.
func TestConnectMessageDisconnectBackfill(t *testing.T) {
	router, g, reg, db := newRouter(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	ctx := context.Background()

	_, err := g.Request(ctx, a, b)
	require.NoError(t, err)
	_, err = g.Accept(ctx, b, a)
	require.NoError(t, err)

	aConns, err := g.Connections(ctx, a)
	require.NoError(t, err)
	require.Len(t, aConns, 1)
	assert.Equal(t, b, aConns[0].ID)

	bConns, err := g.Connections(ctx, b)
	require.NoError(t, err)
	require.Len(t, bConns, 1)
	assert.Equal(t, a, bConns[0].ID)

	ch, handle := reg.Register(b)

	_, err = router.Send(ctx, a, b, "hi")
	require.NoError(t, err)

	var event struct {
		Type    string         `json:"type"`
		Message MessagePayload `json:"message"`
	}
	require.NoError(t, json.Unmarshal(<-ch, &event))
	assert.Equal(t, presence.EventTypeNewMessage, event.Type)
	assert.Equal(t, "hi", event.Message.Content)
	assert.Equal(t, a, event.Message.SenderID)

	// B disconnects; the next message has no live recipient.
	reg.Unregister(b, handle)

	_, err = router.Send(ctx, a, b, "bye")
	require.NoError(t, err)

	messages, err := router.Conversation(ctx, b, a)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, "bye", messages[1].Content)
}
