package logging

import (
	"github.com/sirupsen/logrus"
	"os"
	"strings"
)

// Log is the process-wide logger. Tests may replace it with logrus.New().
var Log = logrus.New()

func BootstrapLogger(level, format string) {
	Log = &logrus.Logger{
		Out:          os.Stdout,
		Hooks:        make(logrus.LevelHooks),
		Formatter:    formatterFor(format),
		ReportCaller: true,
		Level:        levelFor(level),
		ExitFunc:     os.Exit,
	}
}

func formatterFor(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	}
}

func levelFor(level string) logrus.Level {
	if level == "" {
		return logrus.DebugLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.DebugLevel
	}
	return parsed
}
