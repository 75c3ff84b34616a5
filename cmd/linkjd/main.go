package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"linkjd/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultRunner)
	stop()
	os.Exit(exitCode(err))
}

// execute runs one command line and reports its error on stderr
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, newRunner runnerFactory) error {
	root := newRootCommand(newRunner)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	if closeErr := logging.CloseLogging(); closeErr != nil {
		fmt.Fprintln(stderr, "Error closing logs:", closeErr)
	}
	return err
}
