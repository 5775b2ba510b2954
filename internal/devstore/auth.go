package devstore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "user"

// Tokens issues and checks HS256 session tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for u
func (t *Tokens) Issue(u *User) (string, time.Duration, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     u.Role,
		"exp":      now.Add(t.ttl).Unix(),
		"iat":      now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, t.ttl, nil
}

// Parse validates tokenString and returns its user id
func (t *Tokens) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user_id in token")
	}
	return userID, nil
}

// bearerToken reads the Authorization header, falling back to ?token=
// for websocket upgrades
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// authenticate resolves the session on r. The error message is safe to
// return to the caller.
func (s *Server) authenticate(r *http.Request) (*User, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, errors.New("no token provided")
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errors.New("session expired or invalid")
	}
	user, err := s.repo.UserByID(r.Context(), userID)
	if err != nil {
		return nil, errors.New("user no longer exists")
	}
	return user, nil
}

// requireUser rejects requests without a valid session and stores the
// user under userKey
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authenticate(c.Request)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *User {
	u, _ := c.Get(userKey)
	user, _ := u.(*User)
	return user
}
