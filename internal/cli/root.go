// Package cli implements the provider command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/provider/internal/config"
	"github.com/mesh-intelligence/provider/internal/logger"
	"github.com/mesh-intelligence/provider/internal/paths"
	"github.com/mesh-intelligence/provider/pkg/provider"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by the subcommands of one root command.
type app struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "provider" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "provider",
		Short: "Locator-addressed CRUD over contract-mapped tables",
		Long: `provider routes content://authority/path[/id] locators to the table
contracts declared in provider.yaml and runs inserts, queries, updates and
deletes against SQLite or Postgres.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.InitFromString(a.flags.logLevel); err != nil {
				return userError(err)
			}
			logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $"+paths.EnvConfigDir+")")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir, or $"+paths.EnvDataDir+")")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newContractsCmd(),
		a.newInsertCmd(),
		a.newQueryCmd(),
		a.newUpdateCmd(),
		a.newDeleteCmd(),
		a.newTypeCmd(),
		a.newWatchCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args, reports a failure on stderr and returns the
// exit code.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(stderr, "error: ")
	fmt.Fprintln(stderr, err)
	return exitCode(err)
}

// exitCode maps an error to an exit code. Resolution failures, bad input
// and bad configuration are the user's; everything else is a system error.
func exitCode(err error) int {
	var ue *usageError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, types.ErrUnknownResource),
		errors.Is(err, types.ErrInvalidLocator),
		errors.Is(err, types.ErrInvalidColumn),
		errors.Is(err, types.ErrInvalidIdentifier),
		errors.Is(err, types.ErrEmptyValues),
		errors.Is(err, types.ErrInvalidContract),
		errors.Is(err, types.ErrDuplicateTable):
		return exitUserError
	default:
		return exitSysError
	}
}

// usageError marks errors caused by command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func userError(err error) error {
	return &usageError{err: err}
}

// loadConfig resolves the config directory, loads provider.yaml and
// applies the data directory precedence chain.
func (a *app) loadConfig() (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return types.Config{}, "", userError(err)
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve data dir: %w", err)
	}
	return cfg, configDir, nil
}

// openProvider loads the configuration and opens the provider. The caller
// must Close it.
func (a *app) openProvider(ctx context.Context) (*provider.Provider, types.Config, error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return nil, types.Config{}, err
	}
	p, err := provider.Open(ctx, cfg)
	if err != nil {
		return nil, types.Config{}, fmt.Errorf("open provider: %w", err)
	}
	return p, cfg, nil
}

// commandContext returns the command's context carrying a request-scoped
// logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _ = logger.ContextWithLogger(ctx)
	return ctx
}
