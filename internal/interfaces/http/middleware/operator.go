package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inventory-hub/backend/internal/infrastructure/auth"
	"github.com/inventory-hub/backend/internal/infrastructure/logger"
	"github.com/inventory-hub/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Operator identity keys
const (
	OperatorKey    = "operator"
	ClaimsKey      = "operator_claims"
	OperatorHeader = "X-Operator"
	BearerPrefix   = "Bearer "
	// MaxOperatorLength bounds the header supplied operator name
	MaxOperatorLength = 100
)

// OperatorConfig configures operator identification
type OperatorConfig struct {
	// JWTService enables bearer tokens. With it every request outside SkipPaths must
	// carry a valid token; without it the X-Operator header names the operator.
	JWTService *auth.JWTService
	SkipPaths  []string
	Logger     *zap.Logger
}

// OperatorIdentity resolves who performs a request. The operator ends up in the
// gin context, in the request logger and as scanned_by / finished_by of the workflow.
func OperatorIdentity(cfg OperatorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.JWTService == nil {
			if operator := strings.TrimSpace(c.GetHeader(OperatorHeader)); operator != "" {
				if len(operator) > MaxOperatorLength {
					operator = operator[:MaxOperatorLength]
				}
				setOperator(c, operator)
			}
			c.Next()
			return
		}

		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, BearerPrefix) || strings.TrimPrefix(header, BearerPrefix) == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing bearer token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			abortUnauthorized(c, log, err, "Invalid token")
			return
		}
		c.Set(ClaimsKey, claims)
		setOperator(c, claims.Operator())
		c.Next()
	}
}

func setOperator(c *gin.Context, operator string) {
	c.Set(OperatorKey, operator)
	ctx := c.Request.Context()
	ctx, _ = logger.WithOperator(ctx, logger.FromContext(ctx), operator)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("operator authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	code := dto.ErrCodeUnauthorized
	if errors.Is(err, auth.ErrExpiredToken) {
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetOperator returns the operator of the request, or "" when anonymous
func GetOperator(c *gin.Context) string {
	return c.GetString(OperatorKey)
}

// GetClaims returns the validated token claims, or nil without a token
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
