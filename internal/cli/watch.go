package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newWatchCmd() *cobra.Command {
	var (
		count   int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <locator>",
		Short: "Print changes affecting a locator",
		Long: `watch prints the locator of every change at, below or above the given
locator until interrupted. Changes made by other processes are seen when
notify.redis_addr is configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLocator(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			p, _, err := a.openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()
			if timeout > 0 {
				var cancel func()
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			changes, unwatch := p.Watch(l)
			defer unwatch()

			seen := 0
			for count <= 0 || seen < count {
				select {
				case <-ctx.Done():
					return nil
				case changed := <-changes:
					seen++
					if a.flags.jsonMode {
						if err := writeJSON(cmd.OutOrStdout(), map[string]string{"changed": changed.String()}); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), changed)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many changes (0: no limit)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "exit after this long (0: no limit)")
	return cmd
}
