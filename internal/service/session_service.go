package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"copilot-accounts/internal/domain"
)

// SessionService emite y valida el token de sesión que viaja en la cookie
// userToken.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type SessionClaims struct {
	AccountID string `json:"uid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

const sessionTTL = 24 * time.Hour

func NewSessionService(secret string) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    sessionTTL,
		issuer: "copilot-accounts",
	}
}

// TTL expone la vigencia del token para alinear la expiración de la cookie.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Issue(account domain.Account) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionService) Parse(tokenString string) (SessionClaims, error) {
	if len(s.secret) == 0 {
		return SessionClaims{}, ErrSessionInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return SessionClaims{}, ErrSessionInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionExpired
		}
		return SessionClaims{}, ErrSessionInvalid
	}
	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}

func (s *SessionService) isValidClaims(claims SessionClaims) bool {
	if strings.TrimSpace(claims.AccountID) == "" {
		return false
	}
	if claims.Subject != claims.AccountID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
