package middleware

import (
	"errors"
	"net/http"
	"strings"

	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/cache"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUser   = "currentUser"
	ContextKeyClaims = "tokenClaims"
)

// UserLoader is the slice of the database the guard needs
type UserLoader interface {
	GetUserByID(id uint) (*models.User, error)
}

// Authenticator validates bearer tokens and loads the calling user
type Authenticator struct {
	tokens *auth.TokenService
	store  cache.TokenStore
	users  UserLoader
}

func NewAuthenticator(tokens *auth.TokenService, store cache.TokenStore, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, store: store, users: users}
}

// RequireAuth rejects requests without a valid, unrevoked token for an
// active user
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Access token required")
			return
		}
		if status, msg := a.authenticate(c, tokenStr); status != http.StatusOK {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and otherwise
// lets the request through anonymously
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if status, msg := a.authenticate(c, tokenStr); status != http.StatusOK {
				c.AbortWithStatusJSON(status, gin.H{"error": msg})
				return
			}
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context, tokenStr string) (int, string) {
	claims, err := a.tokens.Parse(tokenStr)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return http.StatusUnauthorized, "Token expired"
		}
		return http.StatusUnauthorized, "Invalid token"
	}

	revoked, err := a.store.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		logger.Component("auth").WithError(err).Error("Revocation lookup failed")
		return http.StatusInternalServerError, "Internal server error"
	}
	if revoked {
		return http.StatusUnauthorized, "Token revoked"
	}

	userID, err := claims.UserID()
	if err != nil {
		return http.StatusUnauthorized, "Invalid token"
	}
	user, err := a.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return http.StatusUnauthorized, "User no longer exists"
		}
		logger.Component("auth").WithError(err).Error("User lookup failed")
		return http.StatusInternalServerError, "Internal server error"
	}
	if !user.IsActive {
		return http.StatusUnauthorized, "Account is disabled"
	}

	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyClaims, claims)
	return http.StatusOK, ""
}

// RequireRole must run after RequireAuth
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "Access token required")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextKeyUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns the authenticated user's id or nil
func CurrentUserID(c *gin.Context) *uint {
	if u := CurrentUser(c); u != nil {
		id := u.ID
		return &id
	}
	return nil
}

// CurrentClaims returns the verified token claims or nil
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
