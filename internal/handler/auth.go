package handler

import (
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User login attempt").
		String("username", req.Username).
		Log()

	response, err := h.authService.Login(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			String("username", req.Username).
			Err(err).
			Log()
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		String("username", response.User.Username).
		Log()

	c.JSON(http.StatusOK, response)
}

// Logout deletes the token the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Logout")

	token, ok := middleware.AuthToken(c)
	if !ok {
		logger.WarnWithContext(ctx, "Token not found in context during logout").
			Log()
		respondError(ctx, c, apperrors.ErrNotAuthenticated)
		return
	}

	if err := h.authService.Logout(ctx, token); err != nil {
		logger.ErrorWithContext(ctx, "Failed to logout user").
			Uint("user_id", token.UserID).
			Err(err).
			Log()
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User logged out successfully").
		Uint("user_id", token.UserID).
		Log()

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLogoutSuccess))
}

func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Register")

	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		respondError(ctx, c, err)
		return
	}

	response, err := h.authService.Register(ctx, &req)
	if err != nil {
		logger.InfoWithContext(ctx, "Registration rejected").
			String("username", req.Username).
			Err(err).
			Log()
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User registered").
		String("username", response.Username).
		Log()

	c.JSON(http.StatusCreated, response)
}
