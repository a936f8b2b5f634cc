package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()

	Logger.SetOutput(os.Stdout)
	if path := os.Getenv("LOG_FILE"); path != "" {
		logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			Logger.Fatal(err)
		}
		Logger.SetOutput(logFile)
	}

	Logger.SetFormatter(&logrus.JSONFormatter{}) // Use JSON format for structured logs
	Logger.SetLevel(logrus.InfoLevel)

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		Logger.SetLevel(level)
	}
}

// LogEvent logs structured events
func LogEvent(level logrus.Level, message string, fields logrus.Fields) {
	Logger.WithFields(fields).Log(level, message)
}
