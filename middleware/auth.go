package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"

	tokenCookie = "token"
)

// Claims are the parts of a Supabase Auth access token the API reads. The
// user id is the standard subject claim.
type Claims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	// Role is the Postgres role Supabase assigns ("authenticated"), not the
	// application role stored on the profile.
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func AuthMiddleware(cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Supabase.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Supabase.JWTAudience))
	}
	secret := []byte(cfg.Supabase.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				abort(c, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}
			tokenString = parts[1]
		} else {
			cookieToken, err := c.Cookie(tokenCookie)
			if err != nil || cookieToken == "" {
				abort(c, http.StatusUnauthorized, "Authorization required")
				return
			}
			tokenString = cookieToken
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
			return secret, nil
		}, opts...)
		if err != nil || !token.Valid {
			log.Debug("rejected access token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.Subject == "" {
			abort(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// ProfileLookup resolves the application profile of an authenticated user.
type ProfileLookup interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
}

// ActorMiddleware loads the caller's profile and, when one exists, puts the
// resulting access.Actor on the request context. Users who have not created
// a profile yet pass through without a role.
func ActorMiddleware(profiles ProfileLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			abort(c, http.StatusUnauthorized, "Authorization required")
			return
		}

		profile, err := profiles.Get(c.Request.Context(), userID)
		if err != nil {
			log.Error("failed to load profile", zap.String("user_id", userID), zap.Error(err))
			abort(c, http.StatusInternalServerError, "Failed to load profile")
			return
		}
		if profile != nil {
			actor := access.Actor{ID: profile.ID, Role: profile.Role}
			c.Set(ContextRole, profile.Role)
			c.Request = c.Request.WithContext(access.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

// RequireProfile rejects callers that have no profile, and therefore no
// role, yet.
func RequireProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := access.ActorFrom(c.Request.Context()); !ok {
			abort(c, http.StatusForbidden, "Profile required")
			return
		}
		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			abort(c, http.StatusForbidden, "User role not found")
			return
		}

		userRole, ok := role.(models.Role)
		if !ok {
			abort(c, http.StatusForbidden, "Invalid user role type")
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// Actor returns the authenticated actor of the request, or the zero Actor.
func Actor(c *gin.Context) access.Actor {
	actor, _ := access.ActorFrom(c.Request.Context())
	return actor
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.Response{Success: false, Error: msg})
}
