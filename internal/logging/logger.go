package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// Logger is the minimal structured logging interface used across the service.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// ParseLevel accepts debug, info, warn, error and silent. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off":
		return LevelSilent
	}
	return LevelInfo
}

// LineLogger writes one "key=value" line per entry.
type LineLogger struct {
	out       *log.Logger
	level     Level
	component string
}

// New creates a LineLogger writing to w. A nil writer means stderr.
func New(w io.Writer, level Level) *LineLogger {
	if w == nil {
		w = os.Stderr
	}
	return &LineLogger{
		out:   log.New(w, "", 0),
		level: level,
	}
}

// With returns a copy tagged with a component name.
func (l *LineLogger) With(component string) *LineLogger {
	cp := *l
	cp.component = component
	return &cp
}

func (l *LineLogger) Info(msg string, fields map[string]interface{}) {
	l.write(LevelInfo, "INFO", msg, fields)
}

func (l *LineLogger) Warn(msg string, fields map[string]interface{}) {
	l.write(LevelWarn, "WARN", msg, fields)
}

func (l *LineLogger) Error(msg string, fields map[string]interface{}) {
	l.write(LevelError, "ERROR", msg, fields)
}

func (l *LineLogger) Debug(msg string, fields map[string]interface{}) {
	l.write(LevelDebug, "DEBUG", msg, fields)
}

func (l *LineLogger) write(level Level, tag, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().UTC().Format(time.RFC3339))
	sb.WriteString(" level=")
	sb.WriteString(tag)
	if l.component != "" {
		sb.WriteString(" component=")
		sb.WriteString(l.component)
	}
	sb.WriteString(fmt.Sprintf(" msg=%q", msg))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, formatValue(fields[k])))
	}
	l.out.Println(sb.String())
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprint(val)
	}
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Info(string, map[string]interface{})  {}
func (NoOp) Warn(string, map[string]interface{})  {}
func (NoOp) Error(string, map[string]interface{}) {}
func (NoOp) Debug(string, map[string]interface{}) {}

// GormLogger builds the SQL logger handed to gorm.Config.
func GormLogger(w io.Writer, level Level) gormlogger.Interface {
	if w == nil {
		w = os.Stdout
	}
	gormLevel := gormlogger.Warn
	switch level {
	case LevelDebug:
		gormLevel = gormlogger.Info
	case LevelError:
		gormLevel = gormlogger.Error
	case LevelSilent:
		gormLevel = gormlogger.Silent
	}
	return gormlogger.New(
		log.New(w, "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
