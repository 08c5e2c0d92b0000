package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/provider/pkg/types"
)

// filterFlags holds the --where/--arg pair shared by query, update and
// delete.
type filterFlags struct {
	where string
	args  []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", "selection clause with ? placeholders, e.g. \"title = ?\"")
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "positional argument for --where (repeatable)")
}

// filter returns the selection. Each --arg is decoded as JSON when it
// parses, so 5 is a number and "5" a string.
func (f *filterFlags) filter() (types.Filter, error) {
	if f.where == "" && len(f.args) > 0 {
		return types.Filter{}, userError(fmt.Errorf("--arg given without --where"))
	}
	args := make([]any, 0, len(f.args))
	for _, raw := range f.args {
		args = append(args, parseValue(raw))
	}
	return types.Filter{Where: f.where, Args: args}, nil
}

// parseLocator parses a locator argument as a user error.
func parseLocator(s string) (types.Locator, error) {
	l, err := types.ParseLocator(s)
	if err != nil {
		return types.Locator{}, userError(err)
	}
	return l, nil
}

// parseValues turns key=value arguments into Values. Values that parse as
// JSON keep their JSON type; anything else is a string.
func parseValues(pairs []string) (types.Values, error) {
	values := make(types.Values, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, userError(fmt.Errorf("invalid value %q (expected column=value)", pair))
		}
		values[key] = parseValue(raw)
	}
	return values, nil
}

func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		return raw
	}
	switch v := parsed.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return raw
	case map[string]any, []any:
		return raw
	}
	return parsed
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// collectRows reads every row of rows into column-keyed records, in order.
// []byte values are rendered as strings.
func collectRows(rows types.RowSequence) ([]string, []map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var records []map[string]any
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := cells[i].([]byte); ok {
				cells[i] = string(b)
			}
			rec[c] = cells[i]
		}
		records = append(records, rec)
	}
	return cols, records, rows.Err()
}
