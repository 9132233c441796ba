// Package container wires the console's services with dig.
package container

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"lmsconsole/backend/access"
	"lmsconsole/backend/analytics"
	"lmsconsole/backend/config"
	"lmsconsole/backend/controllers"
	"lmsconsole/backend/curriculum"
	"lmsconsole/backend/progress"
	"lmsconsole/backend/reviews"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

func newLogger(cfg *config.Config) *utils.Logger {
	return utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		Output:       os.Stdout,
		EnableColors: cfg.Debug && cfg.LogFormat != "json",
		RollbarToken: cfg.RollbarToken,
		Report:       !cfg.Debug,
		Environment:  cfg.Env,
	})
}

// newStore opens the document store selected by STORE_DRIVER.
func newStore(cfg *config.Config, logger *utils.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warnf("using the in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err = store.Migrate(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

func newAnalytics(s store.Store, content *curriculum.Service, logger *utils.Logger, cfg *config.Config) *analytics.Service {
	return analytics.NewService(s, content, logger, cfg.AnalyticsWindowDays)
}

func newProgress(s store.Store, content *curriculum.Service, checker *access.Checker, logger *utils.Logger) *progress.Service {
	return progress.NewService(s, content, checker, logger)
}

// New returns the container. cfg is provided as is so tests can pass their own.
func New(cfg *config.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(func() *config.Config { return cfg }))
	must(c.Provide(newLogger))
	must(c.Provide(newStore))
	must(c.Provide(curriculum.NewService))
	must(c.Provide(access.NewChecker))
	must(c.Provide(newProgress))
	must(c.Provide(newAnalytics))
	must(c.Provide(reviews.NewService))

	must(c.Provide(controllers.NewCurriculumController))
	must(c.Provide(controllers.NewProgressController))
	must(c.Provide(controllers.NewAnalyticsController))
	must(c.Provide(controllers.NewReviewsController))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
