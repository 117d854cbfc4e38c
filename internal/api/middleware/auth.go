package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

// Context keys
const (
	UserContextKey     = "auth_user"
	IdentityContextKey = "auth_identity"
)

// Identity is the principal asserted by a verified session token
type Identity struct {
	ExternalID string
	Email      string
}

// bearerToken extracts the credential from an Authorization header
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Unauthorized"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid auth header format. Expected: 'Bearer <token>'"
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", "Invalid API key"
	}
	return parts[1], ""
}

// APIKeyAuth validates API keys from the Authorization header and loads the
// owning user into the request context.
func APIKeyAuth(repo repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, failure := bearerToken(c)
		if failure != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": failure})
			c.Abort()
			return
		}

		user, err := repo.FindUserByAPIKey(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Error().Err(err).Msg("API key lookup failed")
			}
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// SessionAuth validates an identity-provider session token (HS256 JWT) and
// loads the identity, plus the user row when one exists, into the context.
// Handlers that need a provisioned account should stack RequireUser on top.
func SessionAuth(repo repository.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, failure := bearerToken(c)
		if failure != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": failure})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}
		externalID, _ := claims["sub"].(string)
		if externalID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)

		c.Set(IdentityContextKey, &Identity{ExternalID: externalID, Email: email})

		user, err := repo.FindUserByExternalID(c.Request.Context(), externalID)
		if err == nil {
			c.Set(UserContextKey, user)
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Msg("User lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireUser aborts requests whose session has no provisioned account
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFromContext(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user, or nil
func UserFromContext(c *gin.Context) *models.User {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// IdentityFromContext returns the verified session identity, or nil
func IdentityFromContext(c *gin.Context) *Identity {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*Identity)
	return identity
}
