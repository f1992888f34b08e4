package utils

import (
	"os"
	"path/filepath"

	"github.com/cppla/maeum/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is the process-wide logger. It discards everything until InitLogger runs.
	Logger = zap.NewNop()
	Sugar  = Logger.Sugar()
)

// Rotation describes a lumberjack-managed log file.
type Rotation struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func rotationFrom(cfg config.AppConfig, path string) Rotation {
	return Rotation{
		Path:       path,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
}

func (r Rotation) writer() (zapcore.WriteSyncer, error) {
	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   r.Path,
		MaxSize:    orDefault(r.MaxSizeMB, 100),
		MaxBackups: orDefault(r.MaxBackups, 3),
		MaxAge:     orDefault(r.MaxAgeDays, 7),
		Compress:   r.Compress,
	}), nil
}

// InitLogger installs the application logger: JSON to stdout, plus a rotated file when LogPath is set.
// A file that cannot be opened is reported and the logger keeps writing to stdout only.
func InitLogger(cfg config.AppConfig) error {
	level := levelOf(cfg.LogLevel)
	enc := zapcore.NewJSONEncoder(encoderConfig())

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)}
	var fileErr error
	if cfg.LogPath != "" {
		ws, err := rotationFrom(cfg, cfg.LogPath).writer()
		if err != nil {
			fileErr = err
		} else {
			cores = append(cores, zapcore.NewCore(enc.Clone(), ws, level))
		}
	}

	opts := []zap.Option{zap.AddCaller(), zap.Fields(zap.String("service", "maeum"))}
	if level.Level() == zapcore.DebugLevel {
		opts = append(opts, zap.Development())
	}
	Logger = zap.New(zapcore.NewTee(cores...), opts...)
	Sugar = Logger.Sugar()
	if fileErr != nil {
		Sugar.Warnw("log file unavailable, logging to stdout only", "path", cfg.LogPath, "error", fileErr)
	}
	return nil
}

// NewAccessLogger returns a file-only logger for HTTP access lines.
func NewAccessLogger(cfg config.AppConfig) (*zap.Logger, error) {
	ws, err := rotationFrom(cfg, cfg.GinPath).writer()
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, levelOf(cfg.LogLevel))), nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	ec.EncodeDuration = zapcore.SecondsDurationEncoder
	return ec
}

// levelOf falls back to info for empty or unknown names.
func levelOf(name string) zap.AtomicLevel {
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(lvl)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
