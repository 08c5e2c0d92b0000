// Package logger configures logrus and carries per-operation log entries
// in a context.
package logger

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKeyLoggerType struct{}

var contextKeyLogger = &contextKeyLoggerType{}

const requestIDKey = "requestID"

// Init sets up the text formatter with full timestamps and the log level
// for the standard logger.
func Init(level logrus.Level) {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)
	logrus.SetLevel(level)
}

// InitFromString parses level ("debug", "info", ...) and calls Init. An
// empty level means info.
func InitFromString(level string) error {
	if level == "" {
		Init(logrus.InfoLevel)
		return nil
	}
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Init(l)
	return nil
}

// SetOutput redirects the standard logger.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// Default returns an entry of the standard logger without a request id.
func Default() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

// ContextWithLogger returns ctx unchanged if it already carries a logger.
// Otherwise it returns a new context holding an entry with a fresh request
// id.
func ContextWithLogger(ctx context.Context) (context.Context, *logrus.Entry) {
	if ctx == nil {
		ctx = context.Background()
	} else if rlog := fromContext(ctx); rlog != nil {
		return ctx, rlog
	}
	rlog := logrus.WithField(requestIDKey, uuid.NewString())
	return context.WithValue(ctx, contextKeyLogger, rlog), rlog
}

// ContextWithEntry stores entry in ctx.
func ContextWithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKeyLogger, entry)
}

func fromContext(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return nil
	}
	rlog, ok := ctx.Value(contextKeyLogger).(*logrus.Entry)
	if !ok {
		return nil
	}
	return rlog
}

// FromContext returns the context's logger, or an entry of the standard
// logger when there is none.
func FromContext(ctx context.Context) *logrus.Entry {
	if rlog := fromContext(ctx); rlog != nil {
		return rlog
	}
	return Default()
}

// RequestIDFromContext returns the request id of the context's logger, or
// "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	rlog := fromContext(ctx)
	if rlog == nil {
		return ""
	}
	s, _ := rlog.Data[requestIDKey].(string)
	return s
}
