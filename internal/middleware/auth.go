package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/pkg/token"
)

const (
	AuthPlayerIDKey = "auth_player_id"
	AuthRoleKey     = "auth_role"
)

// AuthMiddleware validates the bearer token and loads the player id and
// role into the request context.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		var exists bool
		if err := db.Table("players").Select("1").Where("id = ? AND deleted_at IS NULL", claims.PlayerID).Scan(&exists).Error; err != nil || !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Player not found or inactive"})
			return
		}

		c.Set(AuthPlayerIDKey, claims.PlayerID)
		c.Set(AuthRoleKey, claims.Role)
		c.Next()
	}
}

// GetPlayerIDFromContext extracts the authenticated player id from the context.
func GetPlayerIDFromContext(c *gin.Context) (uint, error) {
	playerID, exists := c.Get(AuthPlayerIDKey)
	if !exists {
		return 0, errors.New("player ID not found in context")
	}

	id, ok := playerID.(uint)
	if !ok {
		return 0, fmt.Errorf("player ID has unexpected type: %T", playerID)
	}
	return id, nil
}

// GetRoleFromContext extracts the authenticated player's role.
func GetRoleFromContext(c *gin.Context) string {
	role, exists := c.Get(AuthRoleKey)
	if !exists {
		return ""
	}
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}
