package middleware

import (
	"net/http"
	"strings"

	"cinetix/internal/shared/config"
	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the typed identity attached to each authenticated request.
// The identity provider issues the token; the core only consumes an opaque
// claimant id plus an admin flag.
type Claims struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

const claimsContextKey = "auth_claims"

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}

		claims := claimsFromToken(mapClaims)
		if claims.UserID == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "token is missing a subject", nil, nil)
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// claimsFromToken converts raw map claims into the typed Claims structure
func claimsFromToken(mc jwt.MapClaims) Claims {
	claims := Claims{}

	if sub, ok := mc["sub"].(string); ok {
		claims.UserID = sub
	} else if id, ok := mc["user_id"].(string); ok {
		claims.UserID = id
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mc["name"].(string); ok {
		claims.Name = name
	}
	if isAdmin, ok := mc["is_admin"].(bool); ok {
		claims.IsAdmin = isAdmin
	} else if role, ok := mc["role"].(string); ok {
		claims.IsAdmin = role == "admin"
	}

	return claims
}

// CurrentClaims returns the typed claims set by JWTAuthWithConfig
func CurrentClaims(c *gin.Context) (Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return Claims{}, false
	}
	claims, ok := value.(Claims)
	return claims, ok
}

// RequireAdmin middleware that requires the admin flag on the claims
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
			c.Abort()
			return
		}

		if !claims.IsAdmin {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
