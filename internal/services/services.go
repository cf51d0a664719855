package services

import (
	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/db"
	task2 "github.com/taskflow/taskflow/internal/services/task"
	user2 "github.com/taskflow/taskflow/internal/services/user"
)

type Services struct {
	User *user2.UserService
	Task *task2.TaskService
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)

	return &Services{
		User: user2.NewUserService(user2.NewUserRepo(dbconn)),
		Task: task2.NewTaskService(task2.NewTaskRepo(dbconn)),
	}
}
