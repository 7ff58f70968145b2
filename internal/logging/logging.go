// Package logging constructs the process-wide zerolog logger: console output
// for development plus a size-capped rotating file next to the app's config.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger. When the config directory cannot be
// resolved the file sink is skipped and only the console writer remains.
func New(appName string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	writers := []io.Writer{console}

	if configDir, err := os.UserConfigDir(); err == nil {
		logPath := filepath.Join(configDir, appName, strings.ToLower(appName)+".log")
		writers = append(writers, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}
