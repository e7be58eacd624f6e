package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// Log formats accepted by --log-format.
const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// setLogFormat switches c.Logger's formatter. JSON and logfmt are meant for
// `serve` behind a log collector.
func (c *CLI) setLogFormat(format string) error {
	switch format {
	case "", logFormatText:
		c.Logger.SetFormatter(log.TextFormatter)
	case logFormatJSON:
		c.Logger.SetFormatter(log.JSONFormatter)
	case logFormatLogfmt:
		c.Logger.SetFormatter(log.LogfmtFormatter)
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown log format %q (want text, json or logfmt)", format)
	}
	return nil
}

// logElapsed logs msg with the time since start: "Rendered 3 maps (1.234s)".
func logElapsed(l *log.Logger, start time.Time, msg string) {
	l.Info(msg, "elapsed", time.Since(start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
