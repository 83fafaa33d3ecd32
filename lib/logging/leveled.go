// Package logging bridges lgr-style "[LEVEL] message" calls to leveled structured loggers
package logging

import (
	"io"
	"strings"

	log "github.com/go-pkgz/lgr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled has printf-style method per log level, *zap.SugaredLogger satisfies it
type Leveled interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Panicf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Adapter implements lgr.L and maps every Logf call to the method of detected level.
// Level prefix, with or without braces, trimmed before the call. TRACE goes to Debugf,
// INFO used if level is not detected.
type Adapter struct {
	leveled Leveled
}

var _ log.L = (*Adapter)(nil)

// NewAdapter makes Adapter for leveled logger
func NewAdapter(leveled Leveled) *Adapter {
	return &Adapter{leveled: leveled}
}

// NewJSON makes Adapter writing json lines to w with zap. Debug and trace messages dropped unless dbg set.
// Returned func flushes buffered entries.
func NewJSON(w io.Writer, dbg bool) (*Adapter, func() error) {
	lvl := zapcore.InfoLevel
	if dbg {
		lvl = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), lvl)
	opts := []zap.Option{}
	if dbg {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}
	sugar := zap.New(core, opts...).Sugar()
	return NewAdapter(sugar), sugar.Sync
}

// Logf detects a log level and calls a corresponding log method
func (a *Adapter) Logf(format string, args ...any) {
	level, msg := splitLevel(format)
	switch level {
	case "TRACE", "DEBUG":
		a.leveled.Debugf(msg, args...)
	case "WARN":
		a.leveled.Warnf(msg, args...)
	case "ERROR":
		a.leveled.Errorf(msg, args...)
	case "PANIC":
		a.leveled.Panicf(msg, args...)
	case "FATAL":
		a.leveled.Fatalf(msg, args...)
	case "INFO":
		a.leveled.Infof(msg, args...)
	default:
		a.leveled.Infof(format, args...)
	}
}

// splitLevel returns upper-cased level from the first word of format and the rest of it
func splitLevel(format string) (level, msg string) {
	word, rest, _ := strings.Cut(format, " ")
	if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
		word = word[1 : len(word)-1]
	}
	return strings.ToUpper(word), strings.TrimSpace(rest)
}
