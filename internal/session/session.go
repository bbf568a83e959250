// Package session implements the login session as a signed, HTTP-only
// cookie. The cookie value is an HMAC-signed JWT whose claims carry the
// authenticated user's id and nothing else; absence of a valid cookie means
// "unauthenticated".
package session

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the session cookie set on successful login
	CookieName = "crm_session"

	sessionTTL = 24 * time.Hour
)

// Claims is the payload of the session token
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookies
type Manager struct {
	secretKey string
}

// NewManager creates a session Manager signing with the given secret
func NewManager(secretKey string) *Manager {
	return &Manager{secretKey: secretKey}
}

// Issue produces a signed session token for the given user id
func (m *Manager) Issue(userID int) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.Itoa(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the session token signature and expiry and returns the
// user id it carries
func (m *Manager) Verify(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Issue signs HS256 only; any other method is rejected, including
		// the other HMAC variants
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse session token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.UserID, nil
	}
	return 0, fmt.Errorf("invalid session token")
}

// SetCookie establishes the login session on the response
func (m *Manager) SetCookie(c *gin.Context, userID int) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(sessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// ClearCookie removes the login session from the response
func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// UserID extracts the authenticated user id from the request's session
// cookie. The second return is false when the request is unauthenticated.
func (m *Manager) UserID(c *gin.Context) (int, bool) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return 0, false
	}
	userID, err := m.Verify(token)
	if err != nil {
		return 0, false
	}
	return userID, true
}
