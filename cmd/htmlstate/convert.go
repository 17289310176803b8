package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/htmlstate"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	html, err := c.readInput(deps.Stdin)
	if err != nil {
		return err
	}

	out, err := deps.Converter.Convert(html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", htmlstate.ErrorMessage(err))
		return err
	}

	if c.Output == "" {
		_, err = fmt.Fprintln(deps.Stdout, out)
		return err
	}
	if err := os.WriteFile(c.Output, []byte(out+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", c.Output, err)
	}
	return nil
}

func (c *ConvertCmd) readInput(stdin io.Reader) (string, error) {
	if c.File == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(c.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", c.File, err)
	}
	return string(b), nil
}
