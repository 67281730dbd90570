// Package auth provides JWT issuance and validation for the admin API
// surface. There is no end-user account system; tokens identify operators
// invoking cache and feature-flag administration endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminTokenExpiry is how long admin tokens are valid. Admin tokens are
// issued out-of-band and short-lived; there is no refresh flow.
const AdminTokenExpiry = 12 * time.Hour

// RoleAdmin is the only role the API recognizes.
const RoleAdmin = "admin"

// Predefined JWT errors.
var (
	ErrInvalidToken = errors.New("invalid admin token")
	ErrTokenExpired = errors.New("admin token has expired")
)

// Claims represents the claims in admin tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the operator role, always RoleAdmin for issued tokens.
	Role string `json:"role"`
}

// JWTConfig holds configuration for the JWT service.
type JWTConfig struct {
	// SigningKey is the secret key used to sign JWTs.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string

	// Audience is the audience claim for tokens.
	Audience string
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg JWTConfig) *JWTService {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "https://api.petrolnearme.com.au"
	}
	audience := cfg.Audience
	if audience == "" {
		audience = "petrolnearme-api"
	}
	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAdminToken creates a new admin token for the given operator name.
func (s *JWTService) GenerateAdminToken(operator string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(AdminTokenExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   operator,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		Role: RoleAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates an admin token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.NewString()
}
