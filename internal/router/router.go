package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/tasks/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}

	r.POST("/tasks/", handlers.Task.CreateTask)
	r.GET("/tasks/", handlers.Task.ListTasks)
	r.GET("/tasks/{task_id}", handlers.Task.GetTask)
	r.DELETE("/tasks/{task_id}", handlers.Task.DeleteTask)

	return r
}
