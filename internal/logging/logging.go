package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
)

// New builds the process logger. DEV environments get a console writer,
// everything else gets JSON. When a log file pattern is configured output is
// also written to a daily rotated file.
func New(cfg config.EnvConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	if pattern := cfg.GetLogFile(); pattern != "" {
		rl, err := rotatelogs.New(
			pattern+".%Y%m%d",
			rotatelogs.WithLinkName(pattern),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("rotatelogs.New: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, rl)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", cfg.GetAppName()).Logger(), nil
}

// MaskToken returns a short prefix of a credential suitable for logs.
func MaskToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "****"
}
