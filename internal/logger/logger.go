package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirName  = "logs"
	logFileName = "famtrack.log"
)

// Logger is the process-wide logger. It stays nil until Init, and every
// helper below is a no-op until then.
var Logger *log.Logger

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr mirrors debug output to stderr. The TUI turns this off so log
	// lines do not tear the alt screen.
	Stderr bool
	// Command is the kong command path, attached to every line as "cmd".
	Command string
}

// Path returns the log file location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, logDirName, logFileName)
}

// Init opens the rotating log file and installs the global logger. Only
// warnings and errors are kept unless Debug is set.
func Init(cfg Config) error {
	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	if cfg.Debug && cfg.Stderr {
		out = io.MultiWriter(os.Stderr, out)
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	l := log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "famtrack",
	})
	if cfg.Command != "" {
		l = l.With("cmd", cfg.Command)
	}
	Logger = l
	return nil
}

// With returns a child logger carrying keyvals on every line, e.g. a
// request ID. Before Init it returns a logger that discards everything.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs msg and exits with status 1, logger or not.
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}

// DebugEnabled reports whether debug output is active.
func DebugEnabled() bool {
	return Logger != nil && Logger.GetLevel() <= log.DebugLevel
}
