package utils

import (
	"log"
	"os"
	"path/filepath"

	"kpitracker/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Global logger instance
var Logger *zap.Logger

// InitializeLogger builds the process logger from AppConfig: JSON in
// production, colored console otherwise, plus a rolling file when LOG_PATH
// is set. It also replaces zap's globals.
func InitializeLogger() {
	cfg := config.AppConfig
	level := parseLevel(cfg.LogLevel, config.IsProduction())

	var encoder zapcore.Encoder
	if config.IsProduction() {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)}

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			log.Printf("log directory unavailable, file logging disabled: %v", err)
		} else {
			file := &lumberjack.Logger{
				Filename:   cfg.LogPath,
				MaxSize:    orDefault(cfg.LogMaxSizeMB, 100),
				MaxBackups: orDefault(cfg.LogMaxBackups, 3),
				MaxAge:     orDefault(cfg.LogMaxAgeDays, 7),
				Compress:   true,
			}
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level))
		}
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !config.IsProduction() {
		opts = append(opts, zap.Development())
	}
	Logger = zap.New(zapcore.NewTee(cores...), opts...)
	zap.ReplaceGlobals(Logger)
}

// GetLogger retrieves the global logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}

func parseLevel(s string, production bool) zapcore.Level {
	if s == "" {
		if production {
			return zapcore.InfoLevel
		}
		return zapcore.DebugLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
