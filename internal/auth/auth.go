package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	errors "github.com/coloradoleasecheck/leasecheck/internal"
)

// TokenGenerator creates and validates admin session tokens.
type TokenGenerator interface {
	GenerateAccessToken(adminID, email string) (string, error)
	GenerateRefreshToken(adminID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// AuthService performs admin authentication.
type AuthService interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims are the JWT claims carried by admin tokens.
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.ErrInvalidCredentials
	ErrInvalidToken       = errors.ErrInvalidToken
	ErrTokenExpired       = errors.ErrTokenExpired
)
