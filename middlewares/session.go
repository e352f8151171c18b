package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yeremiapane/qr-hotel-menu/session"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const (
	SessionCookieName = "qr_session"
	sessionContextKey = "guest_session"
	sessionIssuer     = "qr-hotel-menu"
)

// SessionManager signs the guest session key into an HS256 cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure}
}

func (m *SessionManager) sign(s session.Session) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   s.Key,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) parse(token string) (session.Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return session.Session{}, err
	}
	if claims.Subject == "" {
		return session.Session{}, errors.New("session token has no subject")
	}
	return session.Session{Key: claims.Subject}, nil
}

// Guest attaches the caller's session, issuing a fresh one when the cookie is absent or invalid.
func (m *SessionManager) Guest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookieName); err == nil {
			if s, err := m.parse(raw); err == nil {
				c.Set(sessionContextKey, s)
				c.Next()
				return
			}
		}

		s := session.New()
		token, err := m.sign(s)
		if err != nil {
			utils.ErrorLogger.Errorf("sign guest session: %v", err)
			utils.RespondErrorMessage(c, http.StatusInternalServerError, "could not start session")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// CurrentSession returns the session attached by Guest.
func CurrentSession(c *gin.Context) (session.Session, error) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return session.Session{}, fmt.Errorf("no guest session on request")
	}
	s, ok := v.(session.Session)
	if !ok || s.IsZero() {
		return session.Session{}, fmt.Errorf("invalid guest session on request")
	}
	return s, nil
}
