package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <locator> [column=value...]",
		Short: "Insert a record into a collection",
		Long: `insert adds a record to the collection addressed by the locator and
prints the new record's locator. Values that parse as JSON keep their type.
With no values an empty record is inserted.

Example:
  provider insert content://com.example.provider/notes title=hello 'body="5"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runInsert,
	}
}

func (a *app) runInsert(cmd *cobra.Command, args []string) error {
	l, err := parseLocator(args[0])
	if err != nil {
		return err
	}
	values, err := parseValues(args[1:])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	p, _, err := a.openProvider(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	created, err := p.Create(ctx, l, values)
	if err != nil {
		return err
	}
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"locator": created.String(), "id": created.ID})
	}
	fmt.Fprintln(cmd.OutOrStdout(), created)
	return nil
}

func (a *app) newQueryCmd() *cobra.Command {
	var (
		ff      filterFlags
		columns []string
		sort    string
	)
	cmd := &cobra.Command{
		Use:   "query <locator>",
		Short: "Query a collection or a single record",
		Long: `query selects rows from the table behind the locator. An item locator
is narrowed to its id. Only projection columns may be requested; with no
--columns every projection column is returned.

Example:
  provider query content://com.example.provider/notes --where "title = ?" --arg '"hello"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLocator(args[0])
			if err != nil {
				return err
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			p, _, err := a.openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			rows, err := p.Read(ctx, l, columns, &filter, sort)
			if err != nil {
				return err
			}
			defer rows.Close()
			cols, records, err := collectRows(rows)
			if err != nil {
				return fmt.Errorf("read rows: %w", err)
			}

			if a.flags.jsonMode {
				if records == nil {
					records = []map[string]any{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return writeTable(cmd, cols, records)
		},
	}
	ff.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "projection columns to return (comma separated)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort order, e.g. \"title DESC\"")
	return cmd
}

// writeTable prints records as tab-aligned columns under a bold header.
func writeTable(cmd *cobra.Command, cols []string, records []map[string]any) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := color.New(color.Bold).SprintFunc()
	heads := make([]string, len(cols))
	for i, c := range cols {
		heads[i] = header(c)
	}
	fmt.Fprintln(tw, strings.Join(heads, "\t"))
	for _, rec := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if rec[c] == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(rec[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (a *app) newUpdateCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "update <locator> column=value...",
		Short: "Update the rows matching --where",
		Long: `update writes the values to every row of the locator's table matching
--where. An item locator does NOT narrow the update to its id; pass the id
in --where.

Example:
  provider update content://com.example.provider/notes/3 title=done --where "_id = ?" --arg 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLocator(args[0])
			if err != nil {
				return err
			}
			values, err := parseValues(args[1:])
			if err != nil {
				return err
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			p, _, err := a.openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			n, err := p.Update(ctx, l, values, filter)
			if err != nil {
				return err
			}
			return a.writeCount(cmd, "updated", n)
		},
	}
	ff.register(cmd)
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "delete <locator>",
		Short: "Delete a record or the rows matching --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLocator(args[0])
			if err != nil {
				return err
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			p, _, err := a.openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			n, err := p.Delete(ctx, l, filter)
			if err != nil {
				return err
			}
			return a.writeCount(cmd, "deleted", n)
		},
	}
	ff.register(cmd)
	return cmd
}

func (a *app) writeCount(cmd *cobra.Command, verb string, n int64) error {
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]int64{verb: n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", verb, n)
	return nil
}

func (a *app) newTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <locator>",
		Short: "Print the content type of a locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLocator(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			p, _, err := a.openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			typ, err := p.Type(l)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"locator": l.String(), "type": typ})
			}
			fmt.Fprintln(cmd.OutOrStdout(), typ)
			return nil
		},
	}
}
