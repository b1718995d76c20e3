package main

import (
	"github.com/dayflow/dayflow/config"
	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/routes"
	"github.com/dayflow/dayflow/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.EarnedBadge{},
		&models.Task{},
		&models.Habit{},
		&models.Note{},
		&models.Pomodoro{},
		&models.ScheduleEvent{},
		&models.DailyActivity{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
