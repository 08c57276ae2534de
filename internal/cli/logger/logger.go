// Package logger is the CLI's diagnostic log. It writes to a file so command
// output on stdout stays clean.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/zfogg/murmur/internal/cli/config"
)

var (
	l    = log.New(io.Discard)
	file *os.File
)

// Init opens log.file at log.level; verbose forces debug. Falls back to
// stderr when the file cannot be opened.
func Init(verbose bool) {
	level, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	Close()
	var w io.Writer = os.Stderr
	if f, err := os.OpenFile(config.GetString("log.file"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
		file, w = f, f
	}

	l = log.NewWithOptions(w, log.Options{Level: level, ReportTimestamp: true, Prefix: "murmur"})
}

// Close releases the log file, if any
func Close() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

func Debug(msg string, keyvals ...interface{}) { l.Debug(msg, keyvals...) }

func Warn(msg string, keyvals ...interface{}) { l.Warn(msg, keyvals...) }

func Error(msg string, keyvals ...interface{}) { l.Error(msg, keyvals...) }
