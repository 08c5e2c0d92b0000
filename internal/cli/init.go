package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/provider/internal/config"
	"github.com/mesh-intelligence/provider/pkg/provider"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and the database",
		Long: `init writes a default provider.yaml if the configuration directory has
none, then opens the configured database, creating the contract tables and
recording the schema version.`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, configDir, err := a.loadConfig()
	if err != nil {
		return err
	}
	p, err := provider.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := p.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"config":    config.Path(configDir),
			"authority": cfg.Authority,
			"backend":   cfg.Backend,
			"version":   cfg.Database.Version,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (%s, schema version %d)\nconfig: %s\n",
		cfg.Authority, cfg.Backend, cfg.Database.Version, config.Path(configDir))
	return nil
}
