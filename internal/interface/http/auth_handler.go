package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ceitask/taskboard/internal/application"
	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/pkg/response"
	"github.com/ceitask/taskboard/pkg/validation"
)

// AuthService is the slice of the application layer the auth handler needs.
type AuthService interface {
	Register(ctx context.Context, in application.RegisterInput) error
	Login(ctx context.Context, in application.LoginInput) (*entity.User, string, error)
	GoogleLogin(ctx context.Context, in application.GoogleLoginInput) (*entity.User, string, error)
	UpdateProfileImage(ctx context.Context, username string, img application.ImageUpload) (string, error)
}

type AuthHandler struct {
	Svc    AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

type registerForm struct {
	FullName     string `form:"full_name" binding:"required"`
	Username     string `form:"username" binding:"required"`
	Password     string `form:"password" binding:"required"`
	CaptchaToken string `form:"captcha_token" binding:"required"`
}

// Register POST /api/register (multipart form, optional profile_image file)
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerForm
	if err := c.ShouldBind(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.RegisterInput{
		FullName:     req.FullName,
		Username:     req.Username,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     clientIP(c),
	}
	if fh, err := c.FormFile("profile_image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			response.Err(c, http.StatusBadRequest, "unreadable profile image", nil)
			return
		}
		defer func() { _ = f.Close() }()
		in.Image = &application.ImageUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}

	if err := h.Svc.Register(c.Request.Context(), in); err != nil {
		switch {
		case errors.Is(err, application.ErrBotCheckFailed):
			response.Err(c, http.StatusBadRequest, "captcha verification failed", nil)
		case errors.Is(err, application.ErrUsernameTaken):
			response.Err(c, http.StatusBadRequest, "username taken", nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Err(c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

type loginRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	CaptchaToken string `json:"captcha_token" binding:"required"`
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Username:     req.Username,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     clientIP(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrBotCheckFailed):
			response.Err(c, http.StatusBadRequest, "captcha verification failed", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Err(c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Err(c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

type googleLoginRequest struct {
	Username     string `json:"username" binding:"required"`
	FullName     string `json:"full_name" binding:"required"`
	GoogleID     string `json:"google_id" binding:"required"`
	ProfileImage string `json:"profile_image"`
}

// GoogleLogin POST /api/google-login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.GoogleLogin(c.Request.Context(), application.GoogleLoginInput{
		Username:     req.Username,
		FullName:     req.FullName,
		GoogleID:     req.GoogleID,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		h.Logger.WithError(err).Error("google login failed")
		response.Err(c, http.StatusInternalServerError, "google login failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

// UpdateProfileImage PUT /api/users/profile-image/:username (multipart)
func (h *AuthHandler) UpdateProfileImage(c *gin.Context) {
	username := c.Param("username")

	fh, err := c.FormFile("profile_image")
	if err != nil || fh == nil {
		response.Err(c, http.StatusBadRequest, "no image provided", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Err(c, http.StatusBadRequest, "unreadable profile image", nil)
		return
	}
	defer func() { _ = f.Close() }()

	ref, err := h.Svc.UpdateProfileImage(c.Request.Context(), username, application.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Err(c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile image update failed")
		response.Err(c, http.StatusInternalServerError, "profile image update failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile_image": ref})
}
