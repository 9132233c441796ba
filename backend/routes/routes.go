package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/dig"

	"lmsconsole/backend/config"
	"lmsconsole/backend/controllers"
	_ "lmsconsole/backend/docs"
	"lmsconsole/backend/middleware"
)

// Controllers groups the HTTP controllers resolved by the container.
type Controllers struct {
	dig.In

	Curriculum *controllers.CurriculumController
	Progress   *controllers.ProgressController
	Analytics  *controllers.AnalyticsController
	Reviews    *controllers.ReviewsController
}

func SetupRoutes(app *fiber.App, cfg *config.Config, ctrl Controllers) {
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Student routes
	api := app.Group("/api", authMiddleware)
	api.Get("/lessons/:id/access", ctrl.Progress.GetLessonAccess)
	api.Post("/lessons/:id/telemetry", ctrl.Progress.RecordTelemetry)
	api.Post("/lessons/:id/complete", ctrl.Progress.MarkComplete)
	api.Post("/quizzes/:id/attempts", ctrl.Progress.SubmitQuizAttempt)
	api.Get("/courses/:id/progress", ctrl.Progress.GetCourseProgress)
	api.Get("/courses/:id/certificate", ctrl.Progress.GetCertificate)
	api.Post("/courses/:id/reviews", ctrl.Reviews.SubmitReview)

	// Admin routes
	admin := api.Group("/admin", adminMiddleware)

	courses := admin.Group("/courses")
	courses.Get("/", ctrl.Curriculum.ListCourses)
	courses.Post("/", ctrl.Curriculum.CreateCourse)
	courses.Get("/:id", ctrl.Curriculum.GetCourse)
	courses.Put("/:id", ctrl.Curriculum.UpdateCourse)
	courses.Delete("/:id", ctrl.Curriculum.DeleteCourse)
	courses.Get("/:id/curriculum", ctrl.Curriculum.GetCurriculum)
	courses.Post("/:id/sections", ctrl.Curriculum.CreateSection)
	courses.Post("/:id/sections/reorder", ctrl.Curriculum.ReorderSection)
	courses.Get("/:id/roster", ctrl.Progress.GetRoster)
	courses.Get("/:id/analytics", ctrl.Analytics.GetCourseAnalytics)
	courses.Get("/:id/reviews", ctrl.Reviews.ListReviews)

	admin.Put("/sections/:id", ctrl.Curriculum.UpdateSection)
	admin.Delete("/sections/:id", ctrl.Curriculum.DeleteSection)
	admin.Post("/sections/:id/lessons", ctrl.Curriculum.CreateLesson)
	admin.Post("/sections/:id/lessons/reorder", ctrl.Curriculum.ReorderLesson)

	admin.Put("/lessons/:id", ctrl.Curriculum.UpdateLesson)
	admin.Delete("/lessons/:id", ctrl.Curriculum.DeleteLesson)
	admin.Post("/lessons/:id/quizzes", ctrl.Curriculum.CreateQuiz)

	admin.Put("/quizzes/:id", ctrl.Curriculum.UpdateQuiz)
	admin.Delete("/quizzes/:id", ctrl.Curriculum.DeleteQuiz)

	admin.Put("/reviews/:id/approve", ctrl.Reviews.ApproveReview)
	admin.Put("/reviews/:id/reject", ctrl.Reviews.RejectReview)
	admin.Delete("/reviews/:id", ctrl.Reviews.DeleteReview)
}
