// Package cli implements the stacksize command-line interface.
//
// Commands resolve setup profiles against Debian/Ubuntu package indexes and
// report their installed size. The CLI is built using cobra and logs via
// charmbracelet/log.
//
// # Commands
//
//   - estimate: size every (or the named) setup profile
//   - resolve: list the install closure of packages, explain or draw it
//   - profiles: list or show setup profiles
//   - serve: expose estimates over HTTP
//   - cache: manage the local cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also stored on the command context (see loggerFromContext).
//
// # Configuration
//
// An optional config.toml under $XDG_CONFIG_HOME/stacksize selects the
// mirror, cache backend and artifact source; see [Config].
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped ("15:04:05.00") log lines to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs the formatted message followed by the elapsed time, e.g.
// "Estimated 5 profiles (1.234s)".
func (p *progress) done(format string, args ...any) {
	p.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger stored by the root command, or
// log.Default() outside a command run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
