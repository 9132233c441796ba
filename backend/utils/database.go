package utils

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lmsconsole/backend/config"
)

const connectAttempts = 5

// InitDB подключается к postgres, повторяя попытки пока база поднимается
func InitDB(cfg *config.Config, logger *Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(logger.Std(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var err error
	for i := 0; i < connectAttempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			logger.Infof("connected to database %s on %s:%s", cfg.DBName, cfg.DBHost, cfg.DBPort)
			return db, nil
		}

		logger.Warnf("database connection attempt %d failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	return nil, errors.Wrapf(err, "connecting to database after %d attempts", connectAttempts)
}
