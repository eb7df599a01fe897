package app

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/heartmarshall/healthcard-backend/internal/config"
)

// NewLogger creates a *slog.Logger backed by a zap core and sets it as the
// default logger via slog.SetDefault.
//
// Format "json" uses zap's production JSON encoder.
// Format "text" uses the development console encoder with caller info.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Output is always os.Stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(zapcore.Lock(os.Stderr), cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w zapcore.WriteSyncer, cfg config.LogConfig) slog.Handler {
	json := strings.EqualFold(cfg.Format, "json")

	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, w, parseLevel(cfg.Level))
	return zapslog.NewHandler(core, zapslog.WithCaller(!json))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
