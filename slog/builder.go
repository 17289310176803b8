package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/htmlstate"
)

// Ensure LoggingBuilder implements htmlstate.Builder.
var _ htmlstate.Builder = (*LoggingBuilder)(nil)

// LoggingBuilder wraps a Builder with debug logging of the built tree size.
type LoggingBuilder struct {
	next   htmlstate.Builder
	logger *slog.Logger
}

// NewLoggingBuilder creates a new LoggingBuilder.
func NewLoggingBuilder(next htmlstate.Builder, logger *slog.Logger) *LoggingBuilder {
	return &LoggingBuilder{next: next, logger: logger}
}

// Build delegates to the wrapped builder and logs the number of nodes.
func (b *LoggingBuilder) Build(html string) (*htmlstate.Root, error) {
	begin := time.Now()
	root, err := b.next.Build(html)
	if err != nil {
		b.logger.Debug("build", "err", err, "duration", time.Since(begin))
		return nil, err
	}
	b.logger.Debug("build",
		"blocks", len(root.Children),
		"nodes", htmlstate.CountNodes(root),
		"duration", time.Since(begin),
	)
	return root, nil
}
