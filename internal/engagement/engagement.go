// Package engagement maintains like and comment state on posts. Likes are a
// set keyed by user; comments are an append-only list. The two are stored in
// separate tables so they never contend with each other.
package engagement

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/keylock"
	"proconnect/backend/internal/models"

	"gorm.io/gorm"
)

// Service owns posts and their engagement.
type Service struct {
	db    *gorm.DB
	graph *graph.Service
	posts *keylock.KeyLock
}

// NewService creates an engagement service over db. The graph service scopes
// the feed to a user's connections.
func NewService(db *gorm.DB, g *graph.Service) *Service {
	return &Service{db: db, graph: g, posts: keylock.New()}
}

// CreatePost stores a new post by the author.
func (s *Service) CreatePost(ctx context.Context, authorID uint, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidArgument("post content must not be empty")
	}

	post := models.Post{AuthorID: authorID, Content: content}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Author").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed returns posts by the user and their accepted connections, newest
// first, with likes and comments loaded.
func (s *Service) Feed(ctx context.Context, userID uint) ([]models.Post, error) {
	authorIDs, err := s.graph.ConnectionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, userID)

	var posts []models.Post
	err = s.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.Author").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost loads a single post with its engagement.
func (s *Service) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.Author").
		First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("post %d does not exist", postID)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ToggleLike flips the user's membership in the post's like set and reports
// the resulting membership. The toggle is serialized per post, so two racing
// toggles from the same user land on one well-defined state instead of
// flipping twice.
func (s *Service) ToggleLike(ctx context.Context, postID, userID uint) (liked bool, err error) {
	unlock := s.posts.Lock(strconv.FormatUint(uint64(postID), 10))
	defer unlock()

	var post models.Post
	// Eagerly load just the one liker we care about
	if err := s.db.WithContext(ctx).Preload("Likes", "id = ?", userID).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("post %d does not exist", postID)
		}
		return false, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return false, err
	}

	association := s.db.WithContext(ctx).Model(&post).Association("Likes")

	// If the preload found the user, they already like the post.
	if len(post.Likes) > 0 {
		if err := association.Delete(&user); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := association.Append(&user); err != nil {
		return false, err
	}
	return true, nil
}

// AddComment appends a comment to the post with a fresh id and a server
// timestamp. Comments never take the like path's per-post lock; appends to a
// separate table cannot conflict with like toggles.
func (s *Service) AddComment(ctx context.Context, postID, authorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidArgument("comment content must not be empty")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound("post %d does not exist", postID)
	}

	comment := models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeletePost removes the post together with its comments and likes. Only the
// author may delete.
func (s *Service) DeletePost(ctx context.Context, postID, actorID uint) error {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("post %d does not exist", postID)
		}
		return err
	}
	if post.AuthorID != actorID {
		return apperr.NotAuthorized("only the author may delete a post")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Likes").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
