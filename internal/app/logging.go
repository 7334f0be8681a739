package app

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ConfigureLogging points the global zerolog logger at a console writer on
// stderr and, when cfg.LogFile is set, also at a size-rotated JSON file. The
// returned Closer releases the log file.
func ConfigureLogging(stderr io.Writer, cfg Config) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	console := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	if cfg.LogFile == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}
	}

	maxSize := cfg.LogMaxSizeMB
	if maxSize == 0 {
		maxSize = defaultLogMaxSizeMB
	}
	maxBackups := cfg.LogMaxBackups
	if maxBackups == 0 {
		maxBackups = defaultLogMaxBackups
	}
	maxAge := cfg.LogMaxAgeDays
	if maxAge == 0 {
		maxAge = defaultLogMaxAgeDays
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return file
}
