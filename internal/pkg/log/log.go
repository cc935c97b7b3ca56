package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options 描述日志输出. Output 当前支持 "stderr", "stdout", "file", 为 file 时需要
// 设定 File 指定日志文件位置. Format 支持 "json", "text". Level 为最低输出级别.
type Options struct {
	Output    string
	Format    string
	File      string
	Level     string
	AddSource bool
}

// ParseLevel 将 debug/info/warn/error 转换为 slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unsupported log level: %s", level)
}

// NewLogger 创建 Logger 并设置为 slog 默认 Logger. 返回的 cleanup 用于关闭日志文件.
// stdout 保留给估算结果, 因此命令行模式应使用 stderr 或 file.
func NewLogger(o Options) (*slog.Logger, func(), error) {
	var w io.Writer
	var closer io.Closer
	switch strings.ToLower(o.Output) {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	case "file":
		if o.File == "" {
			return nil, nil, fmt.Errorf("unable to create log file which name is null(\"\")")
		}
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create log file(%s): %w", o.File, err)
		}
		w = f
		closer = f
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", o.Output)
	}

	level, err := ParseLevel(o.Level)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}

	logger, err := newLogger(w, o.Format, &slog.HandlerOptions{AddSource: o.AddSource, Level: level})
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}
	slog.SetDefault(logger)
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
	return logger, cleanup, nil
}

func newLogger(w io.Writer, format string, ho *slog.HandlerOptions) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, ho)), nil
	}
	return nil, fmt.Errorf("unsupported log format: %s", format)
}

// Discard 返回丢弃所有输出的 Logger, 用于测试.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
