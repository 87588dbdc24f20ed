package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/internal/cli"
	swerrors "github.com/matzehuels/stickerwall/pkg/errors"
)

// Exit codes. Usage errors are the caller's to fix; 130 follows the shell
// convention for SIGINT.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot(os.Stderr).ExecuteContext(ctx)
	cancel()

	code := exitCode(err)
	if code != exitOK && code != exitInterrupted {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// newRoot builds the command tree with a --verbose flag that raises the
// log level once flags are parsed.
func newRoot(logOut io.Writer) *cobra.Command {
	var verbose bool

	c := cli.New(logOut, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true // main prints the error once
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output and render/cache events")

	inner := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if inner != nil {
			return inner(cmd, args)
		}
		return nil
	}
	return root
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case swerrors.IsClientError(swerrors.GetCode(err)):
		return exitUsage
	}
	return exitFailure
}
