// @title LMS Console API
// @version 1.0
// @description Curriculum, progress, analytics and review moderation for the LMS admin console.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"log"

	"lmsconsole/backend/config"
	"lmsconsole/backend/container"
	"lmsconsole/backend/routes"
	"lmsconsole/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	c := container.New(cfg)
	err = c.Invoke(func(logger *utils.Logger, ctrl routes.Controllers) {
		app := routes.NewApp(cfg, logger, ctrl)

		logger.Infof("starting server on :%s (env %s, store %s)", cfg.ServerPort, cfg.Env, cfg.StoreDriver)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("server stopped", err)
		}
	})
	if err != nil {
		log.Fatalf("Error starting application: %v", err)
	}
}
