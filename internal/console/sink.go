package console

import (
	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/printer"
)

// logSink mirrors console output into the structured log.
type logSink struct {
	logger *logging.Logger
}

func (s logSink) Output(level printer.Level, text string) {
	fields := map[string]interface{}{
		"console_level": level.String(),
		"text":          text,
	}
	switch level {
	case printer.LevelError, printer.LevelAssert:
		s.logger.Error("console output", fields)
	case printer.LevelWarn, printer.LevelCountReset:
		s.logger.Warn("console output", fields)
	case printer.LevelDebug:
		s.logger.Debug("console output", fields)
	default:
		s.logger.Info("console output", fields)
	}
}
