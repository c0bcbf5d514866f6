package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "speedlog"

// AuthService issues and checks dashboard access tokens
type AuthService struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// Claims is the JWT payload of a dashboard token
type Claims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}

// NewAuthService creates an HMAC-SHA256 token service.
// The secret must be at least 32 bytes.
func NewAuthService(secretKey string, tokenExpiry time.Duration) (*AuthService, error) {
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key is %d bytes, need at least 32", len(secretKey))
	}
	if tokenExpiry <= 0 {
		tokenExpiry = 30 * 24 * time.Hour
	}
	return &AuthService{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
	}, nil
}

// GenerateToken signs a token for client and returns it with its expiry
func (a *AuthService) GenerateToken(client string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.tokenExpiry)

	claims := Claims{
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken verifies and parses a token
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Validate reports only whether tokenString is acceptable
func (a *AuthService) Validate(tokenString string) error {
	_, err := a.ValidateToken(tokenString)
	return err
}
