package utils

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	// text или json
	Format string
	// os.Stdout по умолчанию
	Output io.Writer
	// цвета для консоли
	EnableColors bool

	// Rollbar is only used when Token is set and Report is true.
	RollbarToken string
	Report       bool
	Environment  string
}

// Logger writes to a std logger and mirrors warnings and errors to Rollbar.
type Logger struct {
	std    *log.Logger
	report bool
}

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) *Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[LMS Console] "

	var std *log.Logger
	if cfg.Format == "json" {
		std = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		std = log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
	}

	report := cfg.Report && cfg.RollbarToken != ""
	if report {
		rollbar.SetToken(cfg.RollbarToken)
		rollbar.SetEnvironment(cfg.Environment)
		rollbar.SetStackTracer(rollbarerrors.StackTracer)
	}
	rollbar.SetEnabled(report)

	return &Logger{std: std, report: report}
}

// Std exposes the underlying logger for components that want a *log.Logger.
func (l *Logger) Std() *log.Logger { return l.std }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.std.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.std.Output(2, "INFO "+fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.std.Output(2, "WARN "+msg)
	if l.report {
		rollbar.Warning(msg)
	}
}

// Error logs msg with err (printed with its stack when wrapped by pkg/errors).
func (l *Logger) Error(msg string, err error) {
	l.std.Output(2, fmt.Sprintf("ERROR %s: %+v", msg, err))
	if l.report {
		rollbar.Error(err, map[string]interface{}{"message": msg})
	}
}

func (l *Logger) Fatal(msg string, err error) {
	if l.report {
		rollbar.Critical(err, map[string]interface{}{"message": msg})
		rollbar.Wait()
	}
	l.std.Fatalf("FATAL %s: %v", msg, err)
}
