package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/htmlstate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Converter htmlstate.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel string `name:"log-level" default:"warn" enum:"debug,info,warn,error" env:"HTMLSTATE_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`

	Convert ConvertCmd `cmd:"" help:"Convert HTML from a file or stdin to editor state JSON"`
	Serve   ServeCmd   `cmd:"" help:"Serve the conversion endpoint over HTTP"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	File   string `arg:"" optional:"" help:"HTML file to convert (default: stdin)"`
	Output string `short:"o" help:"Write JSON to this file instead of stdout"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string        `default:":8080" env:"HTMLSTATE_ADDR" help:"Listen address"`
	MaxBody int64         `name:"max-body" default:"2097152" env:"HTMLSTATE_MAX_BODY" help:"Maximum request body size in bytes"`
	Rate    float64       `default:"0" env:"HTMLSTATE_RATE" help:"Conversions per second (0 disables limiting)"`
	Burst   int           `default:"10" env:"HTMLSTATE_BURST" help:"Rate limiter burst size"`
	Timeout time.Duration `default:"30s" env:"HTMLSTATE_TIMEOUT" help:"Per-request timeout"`
}
