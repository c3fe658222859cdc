package handlers

import (
	"errors"
	"net/http"
	"time"

	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/cache"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-in and user administration
type AuthHandler struct {
	db         *database.GormDB
	tokens     *auth.TokenService
	store      cache.TokenStore
	bcryptCost int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *database.GormDB, tokens *auth.TokenService, store cache.TokenStore, bcryptCost int) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, store: store, bcryptCost: bcryptCost}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string      `json:"name" binding:"required,max=100"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=admin agent assistant"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type updateUserRequest struct {
	Name     *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=admin agent assistant"`
	IsActive *bool        `json:"is_active"`
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	now := time.Now().UTC()
	token, claims, err := h.tokens.Issue(user, now)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.TouchLastLogin(user.ID, now); err != nil {
		logger.Component("auth").WithError(err).WithField("user_id", user.ID).Warn("Failed to record login time")
	} else {
		user.LastLoginAt = &now
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"user":       user,
	})
}

// Register creates a user. Admins may create any role; with no users in
// the system the first registration becomes the admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}

	current := middleware.CurrentUser(c)
	if current == nil {
		err := h.db.CreateBootstrapAdmin(user)
		if errors.Is(err, database.ErrInvalidState) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		logger.Component("auth").WithField("user_id", user.ID).Info("Bootstrap admin created")
		c.JSON(http.StatusCreated, user)
		return
	}

	if !current.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}
	if user.Role == "" {
		user.Role = models.RoleAgent
	}
	if err := h.db.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// Logout revokes the presented token until it would have expired
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.store.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ChangePassword replaces the caller's password after checking the old one
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.UpdatePassword(user.ID, hash); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ListUsers returns a page of accounts
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page := parsePage(c)
	users, total, err := h.db.ListUsers(page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, users, total, page)
}

// UpdateUser edits another account's profile, role or active flag
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.db.UpdateUser(id, database.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteUser(id, middleware.CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
