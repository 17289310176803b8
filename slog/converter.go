// Package slog provides logging decorators for htmlstate services.
package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/htmlstate"
)

// Ensure LoggingConverter implements htmlstate.Converter.
var _ htmlstate.Converter = (*LoggingConverter)(nil)

// LoggingConverter wraps a Converter with logging of sizes and duration.
type LoggingConverter struct {
	next   htmlstate.Converter
	logger *slog.Logger
}

// NewLoggingConverter creates a new LoggingConverter.
func NewLoggingConverter(next htmlstate.Converter, logger *slog.Logger) *LoggingConverter {
	return &LoggingConverter{next: next, logger: logger}
}

// Convert delegates to the wrapped converter and logs the outcome.
func (c *LoggingConverter) Convert(html string) (string, error) {
	begin := time.Now()
	out, err := c.next.Convert(html)
	if err != nil {
		c.logger.Error("convert",
			"bytes", len(html),
			"code", htmlstate.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return "", err
	}
	c.logger.Info("convert",
		"bytes", len(html),
		"output_bytes", len(out),
		"duration", time.Since(begin),
	)
	return out, nil
}
