package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fares12358/erb-system-backend/internal/auth"
	"github.com/fares12358/erb-system-backend/internal/models"
)

// ContextKeyUserID holds the key for the authenticated user ID in Gin context.
const ContextKeyUserID = "userID"

// TokenCookieName is the cookie the login handler sets.
const TokenCookieName = "token"

// UserResolver resolves an authenticated subject to an account. Satisfied by
// services.IUserService.
type UserResolver interface {
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

// extractToken pulls the JWT from the token cookie, falling back to a
// Bearer Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// AuthMiddleware creates a Gin middleware enforcing the access-control gate:
// it resolves the credential to an owner identity or rejects the request
// before any business logic runs. A signed token whose subject no longer
// exists is rejected too, so a deleted account cannot keep acting through an
// unexpired token. Handlers must take the owner id from the context only,
// never from request input.
func AuthMiddleware(jwtSecret string, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
			return
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		if _, err := users.FindByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated owner id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
