package api

import (
	"net/http"
	"strings"
	"time"

	"tabletap/internal/subscribers"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxSuperuser = "superuser"
)

// authRequired handles JWT authentication
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxUserID, uint(userID))
		c.Set(ctxSuperuser, claims["superuser"] == true)
		c.Next()
	}
}

// superuserRequired gates staff administration routes.
func (s *Server) superuserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxSuperuser) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// principal returns the authenticated user id set by authRequired.
func principal(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// optionalPrincipal resolves the user id from a bearer token when one
// is present, for endpoints diners may hit anonymously.
func (s *Server) optionalPrincipal(c *gin.Context) *uint {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return nil
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	raw, ok := claims["user_id"].(float64)
	if !ok {
		return nil
	}
	id := uint(raw)
	return &id
}

func (s *Server) issueToken(userID uint, superuser bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"superuser": superuser,
		"exp":       time.Now().Add(time.Duration(s.cfg.Auth.TokenTTL)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.JWTSecret))
}

// Register creates a subscriber account.
func (s *Server) Register(c *gin.Context) {
	var req subscribers.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.IsSuperuser = false

	user, err := s.subscribers.Create(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": user.ID, "username": user.Username})
}

// Login verifies credentials and issues a bearer token.
func (s *Server) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.subscribers.Authenticate(req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	token, err := s.issueToken(user.ID, user.IsSuperuser)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        token,
		"user_id":      user.ID,
		"is_superuser": user.IsSuperuser,
	})
}
