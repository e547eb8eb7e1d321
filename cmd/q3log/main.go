// Command q3log summarizes Quake 3 Arena server logs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/q3log/q3log-go/pkg/q3log/config"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// usageError marks errors caused by flags, arguments or the run profile.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	pedantic   bool
	verbose    bool
	debug      bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "q3log",
		Short: "Summarize Quake 3 Arena server logs",
		Long: `q3log reads a Quake 3 Arena server log (games.log) and reports one
summary per match: players, kills, deaths and how the match ended.

Malformed lines and events that break the match protocol are skipped
quietly by default. Use --verbose to see them on stderr and --pedantic
to stop at the first one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usage(fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML run profile")
	pf.BoolVar(&g.pedantic, "pedantic", false, "Treat every malformed line or protocol violation as fatal")
	pf.BoolVar(&g.verbose, "verbose", false, "Report skipped lines and events on stderr")
	pf.BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newParseCmd(g), newFollowCmd(g), newCompletionCmd())
	return root
}

// profile loads the run profile, if any, and applies the persistent flags
// the user set explicitly.
func (g *globalFlags) profile(cmd *cobra.Command) (*config.Profile, error) {
	p := config.Default()
	if g.configPath != "" {
		var err error
		if p, err = config.Load(g.configPath); err != nil {
			return nil, usage(err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("pedantic") {
		p.Strictness.Pedantic = g.pedantic
	}
	if flags.Changed("verbose") {
		p.Strictness.Verbose = g.verbose
	}
	return p, nil
}

// logger writes warnings to stderr, and debug messages with --debug.
func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	return usage(cobra.NoArgs(cmd, args))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "q3log: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFatal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
