package middleware

import (
	"strings"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type TokenAuthMiddleware struct {
	tokens *service.TokenManager
}

func NewTokenAuthMiddleware(tokens *service.TokenManager) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{tokens: tokens}
}

// parseAuthorization extracts the key from "Token <key>" or "Bearer <key>".
func parseAuthorization(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", apperrors.ErrNotAuthenticated
	}
	if !strings.EqualFold(parts[0], constants.AuthKeywordToken) && !strings.EqualFold(parts[0], constants.AuthKeywordBearer) {
		return "", apperrors.ErrNotAuthenticated
	}
	switch len(parts) {
	case 1:
		return "", apperrors.ErrInvalidTokenHeader
	case 2:
		return parts[1], nil
	default:
		return "", apperrors.ErrInvalidTokenSpaces
	}
}

// RequireAuth resolves the request token and stores the user and token on
// the gin context. The user id is also added to the request context.
func (m *TokenAuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithFunction(c.Request.Context(), "middleware", "RequireAuth")

		key, err := parseAuthorization(c.GetHeader(constants.HeaderAuthorization))
		if err == nil {
			var token *model.Token
			token, err = m.tokens.Authenticate(ctx, key)
			if err == nil {
				c.Set(constants.GinKeyAuthToken, token)
				c.Set(constants.GinKeyAuthUser, &token.User)
				c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), token.UserID))
				c.Next()
				return
			}
		}

		logger.WarnWithContext(ctx, "Authentication failed").
			String("path", c.Request.URL.Path).
			String("method", c.Request.Method).
			Err(err).
			Log()

		c.Header("WWW-Authenticate", constants.AuthKeywordToken)
		c.AbortWithStatusJSON(apperrors.ToHTTPStatus(err), apperrors.ToResponse(err))
	}
}

// AuthToken returns the token stored by RequireAuth.
func AuthToken(c *gin.Context) (*model.Token, bool) {
	v, ok := c.Get(constants.GinKeyAuthToken)
	if !ok {
		return nil, false
	}
	token, ok := v.(*model.Token)
	return token, ok
}

// AuthUser returns the user stored by RequireAuth.
func AuthUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(constants.GinKeyAuthUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
