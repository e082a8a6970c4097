package telemetry

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogSettings selects the operator log level and format.
type LogSettings struct {
	Level  string
	Format string
	Output io.Writer
}

// SettingsFromEnv reads LOG_LEVEL and LOG_FORMAT.
func SettingsFromEnv() LogSettings {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "info"
	}
	return LogSettings{
		Level:  level,
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// NewLogrus builds the operator logger. An unknown level falls back to
// info; "json" selects the JSON formatter, anything else text.
func NewLogrus(settings LogSettings) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(settings.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(settings.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if settings.Output != nil {
		logger.SetOutput(settings.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}
	return logger
}

// Component returns a Logger tagging every line with the component name.
func Component(logger *logrus.Logger, name string) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	return logger.WithField("component", name)
}
