package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Allowed values for the logLevel flags
var Levels = []string{"debug", "info", "warn", "error"}

func Setup(minimumLogLevel, serviceName string) {
	SetupWithWriter(minimumLogLevel, serviceName, os.Stderr)
}

// Same as Setup but writes human readable lines, for interactive commands.
func SetupConsole(minimumLogLevel, serviceName string) {
	SetupWithWriter(minimumLogLevel, serviceName, zerolog.ConsoleWriter{Out: os.Stderr})
}

func SetupWithWriter(minimumLogLevel, serviceName string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(minimumLogLevel))

	// Identify application with logger property
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger()
}

func ParseLevel(minimumLogLevel string) zerolog.Level {
	switch minimumLogLevel {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func ValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}
