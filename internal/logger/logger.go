package logger

import (
	"os"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/rs/zerolog"
)

// New builds the root logger from LOG_LEVEL / LOG_FORMAT.
// Format "console" is for local development, everything else logs JSON.
func New(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if cfg.Format == "console" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zerolog.New(os.Stderr)
	}

	return l.Level(level).With().Timestamp().Logger()
}
