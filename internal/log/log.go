// Package log builds the leveled logfmt loggers used by pqctl.
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Levels lists the accepted level names, most verbose first.
var Levels = []string{"debug", "info", "warn", "error"}

// New returns a logfmt logger writing to w that drops lines below the named
// level. Every line carries a UTC timestamp and the caller.
func New(w io.Writer, levelName string) (log.Logger, error) {
	opt, err := allow(levelName)
	if err != nil {
		return nil, err
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(l, opt), nil
}

// Disabled returns a logger that discards everything.
func Disabled() log.Logger {
	return log.NewNopLogger()
}

func allow(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("log: unknown level %q", name)
}
