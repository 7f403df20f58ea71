package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceitask/taskboard/internal/container"
	handlers "github.com/ceitask/taskboard/internal/interface/http"
	"github.com/ceitask/taskboard/internal/interface/middleware"
	"github.com/ceitask/taskboard/pkg/helpers"
)

// AuthModule wires auth HTTP handlers into routes
// Public: POST /api/register, POST /api/login, POST /api/google-login
// PUT /api/users/profile-image/:username is guarded only when AUTH_ENFORCED is on.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/google-login", loginLimiter, m.Handler.GoogleLogin)

	users := rg.Group("/users")
	if container.GetConfig().AuthEnforced {
		users.Use(middleware.Auth(m.JWT), middleware.RequireOwnUsername())
	}
	users.PUT("/profile-image/:username", m.Handler.UpdateProfileImage)
}
