package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fares12358/erb-system-backend/internal/api/middleware"
	"github.com/fares12358/erb-system-backend/internal/auth"
	"github.com/fares12358/erb-system-backend/internal/config"
	"github.com/fares12358/erb-system-backend/internal/services"
	"github.com/fares12358/erb-system-backend/internal/tasks"
)

// IAsynqClient abstracts the asynq client for task enqueueing (allows mocking).
type IAsynqClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AuthHandler handles the registration, login and password reset endpoints.
type AuthHandler struct {
	userService services.IUserService
	taskClient  IAsynqClient
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.IUserService, taskClient IAsynqClient, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		taskClient:  taskClient,
		cfg:         cfg,
	}
}

type registerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Register handles POST /api/auth/register. It issues an OTP for a free email
// and queues the verification mail; the account is created by VerifyOTP.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid email is required"})
		return
	}

	otp, err := h.userService.BeginRegistration(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email already registered"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to start registration"})
		return
	}

	body := fmt.Sprintf("<h2>Your OTP is: %s</h2>", otp)
	if err := h.enqueueEmail(req.Email, "Verify your email", body); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to email"})
}

type verifyOTPRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	OTP      string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /api/auth/verify-otp. A correct OTP creates the
// account already verified.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name, email, password and OTP are required"})
		return
	}

	user, err := h.userService.CompleteRegistration(c.Request.Context(), req.Name, req.Email, req.Password, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired OTP"})
		case errors.Is(err, services.ErrEmailExists):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account created successfully",
		"data":    gin.H{"id": user.ID.Hex(), "email": user.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. On success the JWT is set as an
// HTTP-only cookie and also returned for bearer-style clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	h.setTokenCookie(c, token, int(h.cfg.JwtTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"data":    gin.H{"id": user.ID.Hex(), "email": user.Email, "token": token},
	})
}

type forgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgetPassword handles POST /api/auth/forget-password. Responds identically
// whether or not the email exists, so accounts cannot be enumerated.
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid email is required"})
		return
	}

	token, user, err := h.userService.CreateResetToken(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "If email exists, reset link sent"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process request"})
		return
	}

	link := fmt.Sprintf("%s/reset-password/%s", h.cfg.ClientURL, token)
	body := fmt.Sprintf("<a href=%q>Reset Password</a>", link)
	if err := h.enqueueEmail(user.Email, "Reset Password", body); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send reset email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "If email exists, reset link sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword handles POST /api/auth/reset-password/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "New password is required"})
		return
	}

	err := h.userService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
		return
	}

	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User fetched successfully", "data": user})
}

// Logout handles POST /api/auth/logout by expiring the token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, token, maxAge, "/", "", h.cfg.CookieSecure, true)
}

func (h *AuthHandler) enqueueEmail(to, subject, htmlBody string) error {
	task, err := tasks.NewEmailDeliveryTask(to, subject, htmlBody)
	if err != nil {
		return fmt.Errorf("failed to build email task: %w", err)
	}
	if _, err := h.taskClient.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}
