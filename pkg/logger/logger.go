package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Leveled logger shared by the API and its background jobs.
// Init(level) is called once at startup; the default level is Info.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel maps a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(l Level, format string, v ...interface{}) {
	mu.RLock()
	out := logger
	mu.RUnlock()
	header := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(levelNames[l]))
	out.Print(header + fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	if shouldLog(LevelDebug) {
		output(LevelDebug, format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if shouldLog(LevelInfo) {
		output(LevelInfo, format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if shouldLog(LevelWarn) {
		output(LevelWarn, format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if shouldLog(LevelError) {
		output(LevelError, format, v...)
	}
}

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, format, v...)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return levelNames[level]
}

// GinMiddleware logs one line per request: method, path, status, latency and
// the request id set by the request-id middleware (when present).
// 5xx responses log at error level, 4xx at warn.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		c.Next()

		status := c.Writer.Status()
		rid := c.GetString("request_id")
		line := "%s %s %d %s rid=%s"
		args := []interface{}{c.Request.Method, path, status, time.Since(start).Round(time.Microsecond), rid}
		if len(c.Errors) > 0 {
			line += " errors=%s"
			args = append(args, c.Errors.String())
		}
		switch {
		case status >= 500:
			Errorf(line, args...)
		case status >= 400:
			Warnf(line, args...)
		default:
			Infof(line, args...)
		}
	}
}
