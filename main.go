package main

import (
	"time"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/routes"
	"github.com/crewfit/fitcircle/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Challenge{},
		&models.Group{},
		&models.CheckIn{},
		&models.WeeklyAttendance{},
		&models.PointAdjustment{},
		&models.UserBadge{},
		&models.BodyMetric{},
		&models.Post{},
		&models.Comment{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Start background cleanup for expired uploads (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
