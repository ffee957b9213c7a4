package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/erp/realestate/internal/infrastructure/auth"
	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/erp/realestate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier turns a bearer token into the calling principal
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// SkipPaths are exact paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(verifier TokenVerifier) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Verifier:  verifier,
		SkipPaths: []string{"/health", "/metrics", "/api/v1/system/ping"},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(verifier))
}

// JWTAuthMiddlewareWithConfig authenticates the bearer token and binds the
// principal's tenant and user to the gin context and the request context.
// Every repository call downstream is scoped by that tenant.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		principal, err := cfg.Verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		tenantID := principal.TenantID.String()
		userID := principal.UserID.String()
		c.Set(PrincipalKey, principal)
		c.Set(logger.GinTenantIDKey, tenantID)
		c.Set(logger.GinUserIDKey, userID)

		ctx := c.Request.Context()
		reqLog := logger.FromContext(ctx)
		ctx, reqLog = logger.WithTenantID(ctx, reqLog, tenantID)
		ctx, _ = logger.WithUserID(ctx, reqLog, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetPrincipal returns the authenticated principal, or nil on skipped paths
func GetPrincipal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// GetTenantID returns the tenant of the authenticated principal
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	p := GetPrincipal(c)
	if p == nil {
		return uuid.Nil, false
	}
	return p.TenantID, true
}

// GetUserID returns the user of the authenticated principal
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	p := GetPrincipal(c)
	if p == nil {
		return uuid.Nil, false
	}
	return p.UserID, true
}

// RequireRole lets the request through only when the principal carries one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if slices.ContainsFunc(roles, p.HasRole) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient role", GetRequestID(c)))
	}
}
