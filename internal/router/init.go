package router

import (
	"github.com/ceitask/taskboard/internal/application"
	"github.com/ceitask/taskboard/internal/container"
	pginfra "github.com/ceitask/taskboard/internal/infrastructure/postgres"
	handlers "github.com/ceitask/taskboard/internal/interface/http"
	"github.com/ceitask/taskboard/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())

	authSvc := application.NewAuthService(
		userRepo,
		container.GetJWT(),
		container.GetBotChecker(),
		container.GetImageStore(),
		container.GetRedis(),
		container.GetLogger(),
	)
	authSvc.Pub = container.GetRabbitPub()
	authSvc.NotifyEmail = cfg.AdminNotifyEmail
	authSvc.MailSendEnabled = cfg.MailSendEnabled

	taskSvc := application.NewTaskService(
		taskRepo,
		container.GetLogger(),
		container.GetES(),
		cfg.ESTasksIndex,
	)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger())
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewTaskModule(taskHandler, container.GetJWT()))
}
