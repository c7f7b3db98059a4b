package main

import (
	"log"

	"github.com/devmahmod/social-api/config"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/routes"
	"github.com/devmahmod/social-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fail before binding a listener; serving half-configured is worse
		// than not serving.
		log.Fatalf("configuration error: %v", err)
	}

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	db, err := config.InitDatabase(cfg,
		&models.User{}, &models.Post{}, &models.PostLike{},
		&models.Comment{}, &models.Category{},
	)
	if err != nil {
		utils.Sugar.Fatalf("database init failed: %v", err)
	}

	utils.InitRedis(cfg)

	r := routes.SetupRouter(cfg, db)

	utils.Sugar.Infof("starting server on port %s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
