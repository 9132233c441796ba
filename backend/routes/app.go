package routes

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"lmsconsole/backend/config"
	"lmsconsole/backend/middleware"
	"lmsconsole/backend/utils"
)

// NewApp creates the fiber app with middleware and every route registered.
func NewApp(cfg *config.Config, logger *utils.Logger, ctrl Controllers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "LMS Console",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	SetupRoutes(app, cfg, ctrl)
	return app
}
