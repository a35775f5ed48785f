package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/constants"
)

// Config describes how a logger writes.
type Config struct {
	// Level is trace, debug, info, warn, error, fatal or disabled.
	Level string

	// Format is json, console or auto. Auto picks console on a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path opened for append.
	Output string

	// TimeFormat is kitchen, rfc3339, rfc3339nano, unix or a Go layout.
	// Only the console format uses it.
	TimeFormat string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level to
// match it. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out, terminal := openOutput(cfg.Output)
	lctx := zerolog.New(writerFor(out, terminal, cfg)).Level(level).With().Timestamp()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		lctx = lctx.Caller()
	}
	for k, v := range cfg.Fields {
		lctx = addField(lctx, k, v)
	}

	return lctx.Logger()
}

// openOutput resolves the Output setting. A file that cannot be opened
// falls back to stderr.
func openOutput(name string) (io.Writer, bool) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout)
	case "", "stderr":
		return os.Stderr, isTerminal(os.Stderr)
	case "discard", "none":
		return io.Discard, false
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, isTerminal(os.Stderr)
	}
	return f, false
}

func writerFor(out io.Writer, terminal bool, cfg *Config) io.Writer {
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "", "auto":
		if !terminal {
			return out
		}
	default:
		return out
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: parseTimeFormat(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// parseLevel accepts zerolog level names plus a few aliases. Unknown
// levels mean info.
func parseLevel(level string) zerolog.Level {
	switch s := strings.ToLower(strings.TrimSpace(level)); s {
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	default:
		l, err := zerolog.ParseLevel(s)
		if err != nil || l == zerolog.NoLevel {
			return zerolog.InfoLevel
		}
		return l
	}
}

var timeFormats = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"unix":        "",
	"epoch":       "",
}

// parseTimeFormat maps a named format to a layout. Strings that already
// look like a Go layout pass through.
func parseTimeFormat(format string) string {
	if layout, ok := timeFormats[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

// addField attaches one typed field.
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		if key == zerolog.ErrorFieldName {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}
