// Package log is a thin audit/security logging facade over zap. Handlers and
// services log named actions ("order.place", "auth.login.fail") with the
// request context attached when one is available.
package log

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = newLogger("")

// Init replaces the process logger. Pass a file path to tee JSON lines into it
// alongside stdout; empty means stdout only.
func Init(logFile string) {
	base = newLogger(logFile)
}

func newLogger(logFile string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	sink := zapcore.AddSync(os.Stdout)
	var openErr error
	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
			sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(f))
		} else {
			openErr = err
		}
	}
	l := zap.New(zapcore.NewCore(enc, sink, zapcore.InfoLevel))
	if openErr != nil {
		l.Warn("could not open log file", zap.String("path", logFile), zap.Error(openErr))
	}
	return l
}

func fields(c *fiber.Ctx, action string, extra map[string]any) []zap.Field {
	fs := []zap.Field{zap.String("action", action)}
	if c != nil {
		fs = append(fs,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			fs = append(fs, zap.String("req_id", rid))
		}
	}
	if len(extra) > 0 {
		fs = append(fs, zap.Any("fields", extra))
	}
	return fs
}

func Info(c *fiber.Ctx, action string, extra map[string]any) {
	base.Info(action, fields(c, action, extra)...)
}

// Audit marks state-changing user actions that should survive in the log trail.
func Audit(c *fiber.Ctx, action string, extra map[string]any) {
	base.Info(action, append(fields(c, action, extra), zap.String("level_tag", "audit"))...)
}

// Security marks denied access, throttling and validation rejections.
func Security(c *fiber.Ctx, action string, extra map[string]any) {
	base.Warn(action, fields(c, action, extra)...)
}

func Error(c *fiber.Ctx, action string, err error, extra map[string]any) {
	base.Error(action, append(fields(c, action, extra), zap.Error(err))...)
}
