package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/ceitask/taskboard/internal/container"
	handlers "github.com/ceitask/taskboard/internal/interface/http"
	"github.com/ceitask/taskboard/internal/interface/middleware"
	"github.com/ceitask/taskboard/pkg/helpers"
)

// TaskModule wires task HTTP handlers into routes.
// GET /api/todos/:username, POST /api/todos, PUT/DELETE /api/todos/:id,
// GET /api/todos/:username/search. Guarded only when AUTH_ENFORCED is on;
// the legacy API trusts the caller-supplied username.
type TaskModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	todos := rg.Group("/todos")
	if container.GetConfig().AuthEnforced {
		todos.Use(middleware.Auth(m.JWT), middleware.RequireOwnUsername())
	}

	todos.GET("/:username", m.Handler.List)
	todos.GET("/:username/search", m.Handler.Search)
	todos.POST("", m.Handler.Create)
	todos.PUT("/:id", m.Handler.UpdateStatus)
	todos.DELETE("/:id", m.Handler.Delete)
}
