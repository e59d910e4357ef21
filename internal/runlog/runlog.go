// Package runlog captures a per-run execution log with elapsed-time
// stamps. The rendered log is saved alongside the other run artifacts.
package runlog

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger accumulates timestamped lines for a single pipeline run.
// Lines render as "[12.34s] LEVEL message".
type Logger struct {
	start time.Time
	buf   *bytes.Buffer
	log   *zap.Logger
}

func New() *Logger {
	start := time.Now()
	buf := &bytes.Buffer{}

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "elapsed",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(fmt.Sprintf("[%.2fs]", t.Sub(start).Seconds()))
		},
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(buf)),
		zapcore.InfoLevel,
	)

	return &Logger{
		start: start,
		buf:   buf,
		log:   zap.New(core),
	}
}

// Start returns the instant the run began; used for artifact naming.
func (l *Logger) Start() time.Time { return l.start }

func (l *Logger) Log(msg string, fields ...zap.Field) {
	l.log.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.log.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.log.Error(msg, fields...)
}

// String renders the accumulated log.
func (l *Logger) String() string {
	_ = l.log.Sync()
	return l.buf.String()
}
