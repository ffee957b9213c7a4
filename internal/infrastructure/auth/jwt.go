package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/erp/realestate/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess marks access tokens; refresh tokens are rejected here
const TokenTypeAccess = "access"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing or malformed tenant_id in claims")
	ErrMissingUserID    = errors.New("missing or malformed user_id in claims")
)

// Claims is the token payload issued by the identity service
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string   `json:"tenant_id"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	TokenType string   `json:"token_type,omitempty"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Username  string
	Roles     []string
	ExpiresAt time.Time
}

// HasRole reports whether the principal carries a role
func (p *Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// JWTService verifies HS256 access tokens. Issuing tokens belongs to the
// identity service; this one only reads tenant and user from them.
type JWTService struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTService creates a verifier from the JWT config
func NewJWTService(cfg config.JWTConfig) *JWTService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTService{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses a token and returns its principal
func (s *JWTService) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil || tenantID == uuid.Nil {
		return nil, ErrMissingTenantID
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	p := &Principal{
		TenantID: tenantID,
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
