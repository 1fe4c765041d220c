package logger

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: console output in development, JSON
// otherwise. Timestamps are rendered in loc (UTC when nil).
func New(isDev bool, loc *time.Location) (*zap.Logger, error) {
	var cfg zap.Config
	if isDev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(InLocation(loc))
}

// NewJSON returns a JSON logger writing to w. Tests use it to capture log lines.
func NewJSON(w io.Writer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// InLocation stamps entries with the wall clock of loc.
func InLocation(loc *time.Location) zap.Option {
	if loc == nil {
		loc = time.UTC
	}
	return zap.WithClock(locClock{loc: loc})
}

type locClock struct {
	loc *time.Location
}

func (c locClock) Now() time.Time { return time.Now().In(c.loc) }

func (c locClock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }
