package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/pkg/jwt"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

const (
	UserIDKey      = "user_id"
	UIDKey         = "uid"
	EmailKey       = "email"
	UsernameKey    = "username"
	AvatarColorKey = "avatar_color"
	ProfilePicKey  = "profile_picture"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	tokenQueryKey  = "token"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens issued by the auth service.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth returns a Gin middleware that validates the bearer token and
// stores the caller identity in the Gin context. Websocket clients may pass
// the token as ?token= since browsers cannot set headers on upgrade.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query(tokenQueryKey)
		if authHeader := c.GetHeader(AuthHeaderKey); authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				response.Unauthorized(c, "invalid authorization format")
				c.Abort()
				return
			}
			token = strings.TrimPrefix(authHeader, BearerPrefix)
		}
		if token == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "token has expired"
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UIDKey, claims.UID)
		c.Set(EmailKey, claims.Email)
		c.Set(UsernameKey, claims.Username)
		c.Set(AvatarColorKey, claims.AvatarColor)
		c.Set(ProfilePicKey, claims.ProfilePicture)

		c.Next()
	}
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetUID extracts the numeric user id from Gin context.
func GetUID(c *gin.Context) int64 {
	return c.GetInt64(UIDKey)
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

// GetEmail extracts email from Gin context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

// GetAvatarColor extracts the avatar color from Gin context.
func GetAvatarColor(c *gin.Context) string {
	return c.GetString(AvatarColorKey)
}

// GetProfilePicture extracts the profile picture URL from Gin context.
func GetProfilePicture(c *gin.Context) string {
	return c.GetString(ProfilePicKey)
}
