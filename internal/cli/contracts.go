package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/provider/pkg/contract"
)

type contractInfo struct {
	Table          string   `json:"table"`
	Locator        string   `json:"locator"`
	PrimaryKey     string   `json:"primary_key"`
	CollectionType string   `json:"collection_type"`
	ItemType       string   `json:"item_type"`
	Columns        []string `json:"columns"`
}

func (a *app) newContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List the configured contracts in registration order",
		Args:  cobra.NoArgs,
		RunE:  a.runContracts,
	}
}

func (a *app) runContracts(cmd *cobra.Command, args []string) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	contracts, err := contract.NewAll(cfg.Contracts)
	if err != nil {
		return userError(err)
	}

	infos := make([]contractInfo, 0, len(contracts))
	for _, c := range contracts {
		cols := make([]string, 0, len(c.Projection()))
		for alias := range c.Projection() {
			cols = append(cols, alias)
		}
		sort.Strings(cols)
		infos = append(infos, contractInfo{
			Table:          c.TableName(),
			Locator:        c.CollectionLocator(cfg.Authority).String(),
			PrimaryKey:     c.PrimaryKey(),
			CollectionType: c.ContentType(),
			ItemType:       c.ItemContentType(),
			Columns:        cols,
		})
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), infos)
	}
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, info := range infos {
		bold.Fprint(out, info.Table)
		fmt.Fprintf(out, "  %s\n", color.CyanString(info.Locator))
		faint.Fprintf(out, "  key %s, %s, %s\n", info.PrimaryKey, info.CollectionType, info.ItemType)
		faint.Fprintf(out, "  columns %s\n", strings.Join(info.Columns, ", "))
	}
	return nil
}
