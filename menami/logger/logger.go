package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
	TypeEconomy LogType = "ECO"
)

// Gateway and rest chatter that disgo emits at debug level.
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

// Attributes consumed by the line format instead of being printed as key=value.
var internalAttrs = map[string]bool{
	"type":           true,
	"name":           true,
	"user_name":      true,
	"status":         true,
	"error":          true,
	"error_location": true,
}

type CustomHandler struct {
	level slog.Leveler
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func NewHandler(level slog.Leveler) *CustomHandler {
	return NewHandlerWithWriter(os.Stdout, level)
}

func NewHandlerWithWriter(w io.Writer, level slog.Leveler) *CustomHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CustomHandler{level: level, out: w, mu: &sync.Mutex{}}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

// recordInfo collects the attributes the line format needs in one pass.
type recordInfo struct {
	logType  LogType
	status   string
	userName string
	cmdName  string
	errText  string
	location string
	extra    []string
}

func (h *CustomHandler) collect(r slog.Record) recordInfo {
	info := recordInfo{logType: TypeSystem}
	visit := func(a slog.Attr) {
		switch a.Key {
		case "type":
			switch a.Value.String() {
			case "cmd":
				info.logType = TypeCommand
			case "db":
				info.logType = TypeDB
			case "error":
				info.logType = TypeError
			case "economy":
				info.logType = TypeEconomy
			}
		case "status":
			info.status = a.Value.String()
		case "user_name":
			info.userName = a.Value.String()
		case "name":
			info.cmdName = a.Value.String()
		case "error":
			info.errText = fmt.Sprintf("%v", a.Value.Any())
		case "error_location":
			info.location = a.Value.String()
		}
		if !internalAttrs[a.Key] {
			key := a.Key
			if h.group != "" {
				key = h.group + "." + key
			}
			info.extra = append(info.extra, fmt.Sprintf("%s=%v", key, a.Value))
		}
	}
	for _, a := range h.attrs {
		visit(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		visit(a)
		return true
	})
	return info
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkip(r.Message) {
		return nil
	}

	levelColor, levelText := colorGreen, "INFO"
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level < slog.LevelInfo:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	info := h.collect(r)
	message := r.Message
	if r.Level >= slog.LevelError {
		if info.location == "" {
			info.location = sourceLocation(r.PC)
		}
		if info.location != "" {
			message = fmt.Sprintf("%s (%s)", message, info.location)
		}
	}
	if info.errText != "" {
		message = fmt.Sprintf("%s: %s", message, info.errText)
	}
	if info.cmdName != "" && info.userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, info.cmdName, info.userName)
	}
	if info.status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, info.status)
	}
	if len(info.extra) > 0 {
		message += " " + strings.Join(info.extra, " ")
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[Menami] [%s] [%s%s%s] [%s] %s%s\n",
		colorWhite,
		ts.Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		info.logType,
		message,
		colorReset,
	)
	return err
}

func shouldSkip(msg string) bool {
	lower := strings.ToLower(msg)
	for _, skip := range skippedMessages {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

func sourceLocation(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

// ParseLevel maps the config level name onto a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
