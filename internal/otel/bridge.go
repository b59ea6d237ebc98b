package otel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	otellog "go.opentelemetry.io/otel/log"
)

// LogBridge returns a writer that forwards the logger's JSON lines into the
// log pipeline as structured records. Nil when the pipeline is disabled, so
// callers can skip the hookup entirely.
func (p *Provider) LogBridge() io.Writer {
	if p.logProvider == nil {
		return nil
	}
	return &logBridge{logger: p.logProvider.Logger(p.config.ServiceName)}
}

// logBridge translates one zerolog JSON line per Write call. Lines that do
// not parse are dropped; the console and file writers still carry them.
type logBridge struct {
	logger otellog.Logger
}

func (b *logBridge) Write(line []byte) (int, error) {
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return len(line), nil
	}

	var rec otellog.Record
	rec.SetTimestamp(time.Now())
	if lvl, ok := fields[zerolog.LevelFieldName].(string); ok {
		rec.SetSeverity(severity(lvl))
		rec.SetSeverityText(lvl)
	}
	if msg, ok := fields[zerolog.MessageFieldName].(string); ok {
		rec.SetBody(otellog.StringValue(msg))
	}
	for k, v := range fields {
		switch k {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
			continue
		}
		rec.AddAttributes(otellog.String(k, fmt.Sprint(v)))
	}

	b.logger.Emit(context.Background(), rec)
	return len(line), nil
}

// severity maps zerolog level names onto the OTel severity scale.
func severity(level string) otellog.Severity {
	switch level {
	case zerolog.LevelTraceValue:
		return otellog.SeverityTrace
	case zerolog.LevelDebugValue:
		return otellog.SeverityDebug
	case zerolog.LevelInfoValue:
		return otellog.SeverityInfo
	case zerolog.LevelWarnValue:
		return otellog.SeverityWarn
	case zerolog.LevelErrorValue:
		return otellog.SeverityError
	case zerolog.LevelFatalValue:
		return otellog.SeverityFatal
	case zerolog.LevelPanicValue:
		return otellog.SeverityFatal2
	default:
		return otellog.SeverityInfo
	}
}
