package handler

import (
	"net/http"
	"strconv"

	"proconnect/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PostInput defines the structure for creating a post.
type PostInput struct {
	Content string `json:"content" binding:"required" example:"Shipped a new release today."`
}

// CommentInput defines the structure for commenting on a post.
type CommentInput struct {
	Content string `json:"content" binding:"required" example:"Congrats!"`
}

// CommentResponse is a comment with its author resolved.
type CommentResponse struct {
	ID        uint   `json:"id"`
	AuthorID  uint   `json:"author_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// PostResponse is a post with its engagement attached. Likes carries user IDs
// so a client can test membership, not just display a count.
type PostResponse struct {
	ID        uint              `json:"id"`
	AuthorID  uint              `json:"author_id"`
	Username  string            `json:"username"`
	Content   string            `json:"content"`
	CreatedAt string            `json:"created_at"`
	Likes     []uint            `json:"likes"`
	Comments  []CommentResponse `json:"comments"`
}

func newCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Username:  comment.Author.Username,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func newPostResponse(post models.Post) PostResponse {
	likes := make([]uint, len(post.Likes))
	for i, u := range post.Likes {
		likes[i] = u.ID
	}

	comments := make([]CommentResponse, len(post.Comments))
	for i, cm := range post.Comments {
		comments[i] = newCommentResponse(cm)
	}

	return PostResponse{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Username:  post.Author.Username,
		Content:   post.Content,
		CreatedAt: post.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Likes:     likes,
		Comments:  comments,
	}
}

// endregion

// CreatePost godoc
// @Summary      Create a post
// @Description  Publishes a short-form post by the authenticated user.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post content"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.engagement.CreatePost(c.Request.Context(), currentUserID(c), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(*post))
}

// GetFeed godoc
// @Summary      Get the feed
// @Description  Lists posts by the authenticated user and their connections, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PostResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /posts [get]
func (h *Handler) GetFeed(c *gin.Context) {
	posts, err := h.engagement.Feed(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = newPostResponse(p)
	}
	c.JSON(http.StatusOK, responses)
}

// ToggleLike godoc
// @Summary      Toggle a like on a post
// @Description  Likes the post if the user has not liked it, removes the like otherwise.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  map[string]bool "{"liked": true}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Router       /posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	liked, err := h.engagement.ToggleLike(c.Request.Context(), uint(postID), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Appends a comment to the post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Post ID"
// @Param        input body CommentInput true "Comment content"
// @Success      201  {object}  CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Router       /posts/{id}/comment [post]
func (h *Handler) AddComment(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.engagement.AddComment(c.Request.Context(), uint(postID), currentUserID(c), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentResponse(*comment))
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Removes the post and all of its comments and likes. Author only.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  map[string]string "{"message": "Post deleted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the author"
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Router       /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	if err := h.engagement.DeletePost(c.Request.Context(), uint(postID), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
