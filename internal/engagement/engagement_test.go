package engagement

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/database"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/models"

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

func newService(t *testing.T) (*Service, *graph.Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	g := graph.NewService(db)
	return NewService(db, g), g, db
}

func likeIDs(t *testing.T, svc *Service, postID uint) []uint {
	t.Helper()
	post, err := svc.GetPost(context.Background(), postID)
	require.NoError(t, err)
	ids := make([]uint, len(post.Likes))
	for i, u := range post.Likes {
		ids[i] = u.ID
	}
	return ids
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 1)

	_, err := svc.CreatePost(context.Background(), users[0].ID, "  ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	post, err := svc.CreatePost(context.Background(), users[0].ID, "first post")
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, post.AuthorID)
	assert.Equal(t, "user1", post.Author.Username)
}

func TestToggleLikeIsItsOwnInverse(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 2)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, users[0].ID, "hello world")
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, post.ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []uint{users[1].ID}, likeIDs(t, svc, post.ID))

	liked, err = svc.ToggleLike(ctx, post.ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, likeIDs(t, svc, post.ID))
}

func TestToggleLikeFromDifferentUsersBothApply(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 3)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, users[0].ID, "hello world")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, u := range users[1:] {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.ToggleLike(ctx, post.ID, userID)
			assert.NoError(t, err)
		}(u.ID)
	}
	wg.Wait()

	assert.ElementsMatch(t, []uint{users[1].ID, users[2].ID}, likeIDs(t, svc, post.ID))
}

func TestToggleLikeMissingPost(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 1)

	_, err := svc.ToggleLike(context.Background(), 999, users[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommentsAppendInOrder(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 2)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, users[0].ID, "hello world")
	require.NoError(t, err)

	for i, content := range []string{"one", "two", "three"} {
		author := users[i%2].ID
		comment, err := svc.AddComment(ctx, post.ID, author, content)
		require.NoError(t, err)
		assert.NotZero(t, comment.ID)
	}

	loaded, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Comments, 3)
	assert.Equal(t, "one", loaded.Comments[0].Content)
	assert.Equal(t, "two", loaded.Comments[1].Content)
	assert.Equal(t, "three", loaded.Comments[2].Content)

	_, err = svc.AddComment(ctx, 999, users[0].ID, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AddComment(ctx, post.ID, users[0].ID, "  ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	svc, _, db := newService(t)
	users := seedUsers(t, db, 2)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, users[0].ID, "hello world")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, post.ID, users[1].ID, "nice")
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, post.ID, users[1].ID)
	require.NoError(t, err)

	err = svc.DeletePost(ctx, post.ID, users[1].ID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	require.NoError(t, svc.DeletePost(ctx, post.ID, users[0].ID))

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var commentCount int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	assert.EqualValues(t, 0, commentCount)

	var likeCount int64
	require.NoError(t, db.Table("post_likes").Where("post_id = ?", post.ID).Count(&likeCount).Error)
	assert.EqualValues(t, 0, likeCount)

	err = svc.DeletePost(ctx, post.ID, users[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFeedScopedToConnections(t *testing.T) {
	svc, g, db := newService(t)
	users := seedUsers(t, db, 3)
	ctx := context.Background()

	// users[0] and users[1] are connected; users[2] is a stranger.
	_, err := g.Request(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	_, err = g.Accept(ctx, users[1].ID, users[0].ID)
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, users[0].ID, "mine")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, users[1].ID, "from a connection")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, users[2].ID, "from a stranger")
	require.NoError(t, err)

	feed, err := svc.Feed(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	contents := []string{feed[0].Content, feed[1].Content}
	assert.ElementsMatch(t, []string{"mine", "from a connection"}, contents)

	// Newest first.
	assert.False(t, feed[0].CreatedAt.Before(feed[1].CreatedAt))
}
