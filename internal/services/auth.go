package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims represents JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService authenticates the single operator password and issues session
// tokens. The password hash is derived from config at startup; there is no
// user table.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
}

// NewAuthService creates an auth service for the configured password.
func NewAuthService(password, jwtSecret string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
	}, nil
}

// CheckPassword compares the operator password with a login attempt.
func (s *AuthService) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

// SetPassword replaces the operator password after a settings save.
func (s *AuthService) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.passwordHash = hash
	return nil
}

// GenerateToken issues a session token valid for 7 days.
func (s *AuthService) GenerateToken() (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "domain-check",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
