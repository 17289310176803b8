package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/htmlstate"
	"github.com/fwojciec/htmlstate/goquery"
	"github.com/fwojciec/htmlstate/lexical"
	htmlslog "github.com/fwojciec/htmlstate/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Converter overrides the default conversion pipeline. Set before
	// calling Run() for end-to-end testing.
	Converter htmlstate.Converter
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("htmlstate"),
		kong.Description("Convert HTML fragments into rich-text editor state."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'htmlstate --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.LogLevel)
	deps.Converter = m.Converter
	if deps.Converter == nil {
		deps.Converter = newConverter(deps.Logger)
	}

	return kongCtx.Run(deps)
}

// newConverter wires the conversion pipeline with logging.
func newConverter(logger *slog.Logger) htmlstate.Converter {
	builder := htmlslog.NewLoggingBuilder(goquery.NewBuilder(goquery.WithLogger(logger)), logger)
	pipeline := htmlstate.NewPipeline(builder, lexical.NewSerializer())
	return htmlslog.NewLoggingConverter(pipeline, logger)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
