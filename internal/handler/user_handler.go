package handler

import (
	"net/http"
	"strconv"

	"proconnect/backend/internal/models"
	"proconnect/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username   string `json:"username" binding:"required" example:"adaeng"`
	Email      string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password   string `json:"password" binding:"required,min=8" example:"password123"`
	FullName   string `json:"full_name" binding:"required" example:"Ada Lovelace"`
	Profession string `json:"profession" binding:"required" example:"Software Engineer"`
	Bio        string `json:"bio"`
	Location   string `json:"location"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateProfileInput defines the editable profile fields; nil means unchanged.
type UpdateProfileInput struct {
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	AvatarURL *string `json:"avatar_url"`
}

// UserResponse defines the structure for a user's public profile.
type UserResponse struct {
	ID         uint    `json:"id" example:"1"`
	Username   string  `json:"username" example:"adaeng"`
	FullName   string  `json:"full_name" example:"Ada Lovelace"`
	Profession string  `json:"profession" example:"Software Engineer"`
	Bio        string  `json:"bio"`
	Location   string  `json:"location"`
	AvatarURL  *string `json:"avatar_url"`
	CreatedAt  string  `json:"created_at"`
}

// AuthResponse carries a freshly minted token together with the user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// StatsResponse summarizes the authenticated user's activity.
type StatsResponse struct {
	TotalPosts       int64  `json:"total_posts"`
	TotalConnections int64  `json:"total_connections"`
	PendingRequests  int64  `json:"pending_requests"`
	TotalLikes       int64  `json:"total_likes"`
	TotalComments    int64  `json:"total_comments"`
	ProfessionCount  int64  `json:"profession_count"`
	Profession       string `json:"profession"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Profession: user.Profession,
		Bio:        user.Bio,
		Location:   user.Location,
		AvatarURL:  user.AvatarURL,
		CreatedAt:  user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func newUserResponses(users []models.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = newUserResponse(u)
	}
	return responses
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := h.db.Where("username = ? OR email = ?", input.Username, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
		Profession:   input.Profession,
		Bio:          input.Bio,
		Location:     input.Location,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: newUserResponse(user)})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: newUserResponse(user)})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by profession and by name or username substring, with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        profession query   string  false  "Filter by profession"
// @Param        q          query   string  false  "Search query for username or full name"
// @Param        page       query   int     false  "Page number" default(1)
// @Param        limit      query   int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[UserResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	viewerID := currentUserID(c)
	searchQuery := c.Query("q")
	profession := c.Query("profession")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	query := h.db.Model(&models.User{}).Where("id != ?", viewerID)
	if profession != "" {
		query = query.Where("profession = ?", profession)
	}
	if searchQuery != "" {
		pattern := "%" + searchQuery + "%"
		query = query.Where("username ILIKE ? OR full_name ILIKE ?", pattern, pattern)
	}

	result, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newUserResponses(result.Data), result.Meta.TotalItems, page, limit))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user by their ID.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUserByID(c *gin.Context) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateProfile godoc
// @Summary      Update the current user's profile
// @Description  Updates full name, bio, location or avatar URL; omitted fields are left unchanged.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}

	if len(updates) > 0 {
		if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetMyStats godoc
// @Summary      Get dashboard stats
// @Description  Summarizes the authenticated user's posts, connections and received engagement.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatsResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me/stats [get]
func (h *Handler) GetMyStats(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var stats StatsResponse
	stats.Profession = user.Profession

	h.db.Model(&models.Post{}).Where("author_id = ?", userID).Count(&stats.TotalPosts)
	h.db.Model(&models.Connection{}).
		Where("status = ? AND (requester_id = ? OR target_id = ?)", models.StatusAccepted, userID, userID).
		Count(&stats.TotalConnections)
	h.db.Model(&models.Connection{}).
		Where("status = ? AND target_id = ?", models.StatusPending, userID).
		Count(&stats.PendingRequests)
	h.db.Model(&models.User{}).Where("profession = ?", user.Profession).Count(&stats.ProfessionCount)

	h.db.Table("post_likes").
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.author_id = ? AND posts.deleted_at IS NULL", userID).
		Count(&stats.TotalLikes)
	h.db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ? AND posts.deleted_at IS NULL", userID).
		Count(&stats.TotalComments)

	c.JSON(http.StatusOK, stats)
}

// endregion
