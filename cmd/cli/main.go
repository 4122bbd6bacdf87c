package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/fablec/internal/app"
	"github.com/vk/fablec/internal/cli"
)

// main is the entrypoint for the fablec compiler.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		if errors.Is(err, app.ErrCompilationFailed) {
			// Diagnostics are already on stderr.
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW, errW io.Writer, args []string) error {
	config, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a := app.NewApp(outW, errW, config, nil)
	return a.Run(context.Background())
}
