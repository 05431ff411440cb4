package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appsnxt/platform/internal/application/identity"
	"github.com/appsnxt/platform/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	userService *identity.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, userService *identity.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// accessToken extracts the bearer token from the Authorization header
func accessToken(c *gin.Context) string {
	header := c.GetHeader(middleware.AuthHeaderKey)
	if !strings.HasPrefix(header, middleware.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, middleware.BearerPrefix)
}

// Signup godoc
// @ID           signup
// @Summary      Register a new account
// @Description  Registers an account with the hosted auth provider and returns a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.SignupRequest true "Signup request"
// @Success      201 {object} APIResponse[identity.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req identity.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, session)
}

// Signin godoc
// @ID           signin
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.SigninRequest true "Signin request"
// @Success      200 {object} APIResponse[identity.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req identity.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.authService.Signin(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// Signout godoc
// @ID           signout
// @Summary      Sign out and revoke the current token
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	token := accessToken(c)
	if token == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Signout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Refresh godoc
// @ID           refreshSession
// @Summary      Exchange a refresh token for a new session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh request"
// @Success      200 {object} APIResponse[identity.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// ResetPassword godoc
// @ID           resetPassword
// @Summary      Request a password recovery email
// @Description  Always returns 200 regardless of whether the address exists
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.ResetPasswordRequest true "Reset request"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req identity.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "If the address exists, a recovery email has been sent"})
}

// UpdatePassword godoc
// @ID           updatePassword
// @Summary      Set a new password for the signed-in user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdatePasswordRequest true "Password request"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/update-password [post]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req identity.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	token := accessToken(c)
	if token == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), token, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password updated"})
}

// Me godoc
// @ID           getMe
// @Summary      Get the signed-in user's profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	h.Success(c, identity.ToUserResponse(user))
}

// UpdateMe godoc
// @ID           updateMe
// @Summary      Update the signed-in user's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)
		auth.POST("/signout", h.Signout)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/update-password", h.UpdatePassword)
		auth.GET("/me", h.Me)
		auth.PUT("/me", h.UpdateMe)
	}
}
