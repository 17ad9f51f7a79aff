package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

// App state shared by the subcommands of one invocation
type App struct {
	factory Factory
	out     io.Writer

	configPath string
	logLevel   string

	log  *logger.Logger
	deps *Deps
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Execute runs the grok command tree with args. Dependencies built for the
// run are released before it returns, whether or not the command failed.
func Execute(ctx context.Context, out io.Writer, factory Factory, args []string) error {
	if factory == nil {
		factory = NewDeps
	}
	app := &App{factory: factory, out: out}
	defer app.close()

	root := newRootCommand(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) close() {
	if a.deps != nil && a.deps.Cleanup != nil {
		a.deps.Cleanup()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "grok",
		Short:         "xAI Grok search, image and video from the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := Setup(app.configPath, LevelOptions(app.logLevel)...)
			if err != nil {
				return err
			}
			app.log = log

			ctx := logger.NewRequestContext(cmd.Context())
			cmd.SetContext(ctx)

			deps, err := app.factory(ctx, cfg, log)
			if err != nil {
				return err
			}
			app.deps = deps
			return nil
		},
	}
	root.SetOut(app.out)

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default ./grok.yaml if present)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newSearchWebCommand(app),
		newSearchXCommand(app),
		newImagineCommand(app),
		newEditCommand(app),
		newVideoCommand(app),
		newVideoStatusCommand(app),
	)

	return root
}

// requireArg accepts exactly one positional argument named name
func requireArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || args[0] == "" {
			return fmt.Errorf("%s required", name)
		}
		if len(args) > 1 {
			return fmt.Errorf("expected a single %s, got %d arguments (quote it)", name, len(args))
		}
		return nil
	}
}

// changedSlice returns the flag value only when the user set it, so an
// absent list stays nil.
func changedSlice(cmd *cobra.Command, name string) []string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetStringSlice(name)
	if v == nil {
		v = []string{}
	}
	return v
}
