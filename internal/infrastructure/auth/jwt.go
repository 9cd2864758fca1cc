package auth

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/config"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carried by both token kinds. The owner is identified by external
// SID only; internal numeric IDs never leave the process.
type Claims struct {
	UserSID   string                 `json:"user_sid"`
	SessionID string                 `json:"session_id"`
	Role      authorization.UserRole `json:"role"`
	TokenType TokenType              `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// JWTService issues and verifies RS256 token pairs. Verification pins both
// the algorithm and the issuer, so an HS256 token signed with the public key
// bytes, or a token minted by another issuer, never parses.
type JWTService struct {
	privateKey       *rsa.PrivateKey
	publicKey        *rsa.PublicKey
	issuer           string
	accessExpMinutes int
	refreshExpDays   int
}

func NewJWTService(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string, accessExpMinutes, refreshExpDays int) *JWTService {
	return &JWTService{
		privateKey:       privateKey,
		publicKey:        publicKey,
		issuer:           issuer,
		accessExpMinutes: accessExpMinutes,
		refreshExpDays:   refreshExpDays,
	}
}

// NewJWTServiceFromConfig loads the RSA keypair from PEM files. The private
// key may be passphrase protected.
func NewJWTServiceFromConfig(cfg config.JWTConfig) (*JWTService, error) {
	publicPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	privatePEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	var privateKey *rsa.PrivateKey
	if cfg.Passphrase != "" {
		privateKey, err = jwt.ParseRSAPrivateKeyFromPEMWithPassword(privatePEM, cfg.Passphrase) //nolint:staticcheck // encrypted PEM keys are part of the deployment format
	} else {
		privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return NewJWTService(privateKey, publicKey, cfg.Issuer, cfg.AccessExpMinutes, cfg.RefreshExpDays), nil
}

// Generate mints a fresh access/refresh pair bound to a session record.
func (s *JWTService) Generate(userSID string, sessionID string, role authorization.UserRole) (*TokenPair, error) {
	now := time.Now().UTC()

	accessExp := now.Add(time.Duration(s.accessExpMinutes) * time.Minute)
	accessClaims := &Claims{
		UserSID:   userSID,
		SessionID: sessionID,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodRS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExp := now.Add(time.Duration(s.refreshExpDays) * 24 * time.Hour)
	refreshClaims := &Claims{
		UserSID:   userSID,
		SessionID: sessionID,
		Role:      role,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodRS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.accessExpMinutes * 60),
	}, nil
}

// Verify parses and validates a token of either kind
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// VerifyAccess validates a token and requires it to be an access token
func (s *JWTService) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("token is not an access token")
	}
	return claims, nil
}

// VerifyRefresh validates a token and requires it to be a refresh token
func (s *JWTService) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// AccessExpMinutes returns the access token lifetime in minutes
func (s *JWTService) AccessExpMinutes() int {
	return s.accessExpMinutes
}

// RefreshExpDays returns the refresh token lifetime in days
func (s *JWTService) RefreshExpDays() int {
	return s.refreshExpDays
}

// RefreshExpiry returns the absolute expiry for a refresh token issued now
func (s *JWTService) RefreshExpiry() time.Time {
	return time.Now().UTC().Add(time.Duration(s.refreshExpDays) * 24 * time.Hour)
}
