// Package logger holds the process-wide zap logger and the field helpers the
// services share so log lines can be grepped by the same keys.
package logger

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is a no-op until Initialize runs, so tests can log without setup
var Log = zap.NewNop()

// DisableFile as the log file keeps output on stdout only
const DisableFile = "-"

// Rotation limits for the JSON file sink
const (
	maxFileMB   = 100
	maxBackups  = 5
	maxAgeDays  = 7
	defaultFile = "server.log"
)

// Initialize replaces Log with a logger writing human-readable lines to
// stdout and JSON lines to a rotated file. Unknown levels fall back to info.
func Initialize(level, file string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}
	if file == "" {
		file = defaultFile
	}

	Log = zap.New(zapcore.NewTee(cores(lvl, file)...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel))

	Log.Info("Logger initialized", zap.Stringer("level", lvl), zap.String("file", file))
	return nil
}

func cores(lvl zapcore.Level, file string) []zapcore.Core {
	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		lvl)
	if file == DisableFile {
		return []zapcore.Core{console}
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxFileMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	})
	return []zapcore.Core{console, zapcore.NewCore(zapcore.NewJSONEncoder(enc), rotated, lvl)}
}

// Close flushes buffered entries
func Close() error {
	// Syncing stdout fails on some terminals; only report file errors
	if err := Log.Sync(); err != nil && !isStdSyncError(err) {
		return fmt.Errorf("flush logger: %w", err)
	}
	return nil
}

func isStdSyncError(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && pathErr.Path == os.Stdout.Name()
}

func InfoWithFields(msg string, fields ...zap.Field) { Log.Info(msg, fields...) }

func DebugWithFields(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { Log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }

// WarnWithFields logs at warn level, attaching err when non-nil
func WarnWithFields(msg string, err error, fields ...zap.Field) {
	Log.Warn(msg, withErr(err, fields)...)
}

// ErrorWithFields logs at error level, attaching err when non-nil
func ErrorWithFields(msg string, err error, fields ...zap.Field) {
	Log.Error(msg, withErr(err, fields)...)
}

// FatalWithFields logs and exits the process
func FatalWithFields(msg string, err error, fields ...zap.Field) {
	Log.Fatal(msg, withErr(err, fields)...)
}

func withErr(err error, fields []zap.Field) []zap.Field {
	if err == nil {
		return fields
	}
	return append(fields, zap.Error(err))
}

func WithRequestID(id string) zap.Field { return zap.String("request_id", id) }

func WithUserID(id string) zap.Field { return zap.String("user_id", id) }

func WithPostID(id string) zap.Field { return zap.String("post_id", id) }

func WithTargetID(id string) zap.Field { return zap.String("target_id", id) }

func WithIP(ip string) zap.Field { return zap.String("ip", ip) }

func WithStatus(status int) zap.Field { return zap.Int("status", status) }

func WithDuration(d interface{}) zap.Field { return zap.Any("duration", d) }
