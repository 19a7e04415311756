package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// outputFormat returns the value of the persistent -o flag
func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

// outputJSON writes v as indented JSON
func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputRecord prints a record as sorted key/value lines, or as JSON
func outputRecord(cmd *cobra.Command, rec api.Record) error {
	if outputFormat(cmd) == "json" {
		return outputJSON(rec)
	}
	if len(rec) == 0 {
		fmt.Println("(empty)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range sortedKeys(rec) {
		fmt.Fprintf(w, "%s:\t%s\n", k, formatValue(rec[k]))
	}
	return w.Flush()
}

// outputTable prints records as a table with the given columns
func outputTable(records []api.Record, columns []string, empty string) error {
	if len(records) == 0 {
		fmt.Println(empty)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(strings.TrimPrefix(c, "_"))
		rule[i] = strings.Repeat("-", len(header[i]))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	fmt.Fprintln(w, strings.Join(rule, "\t"))

	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = cell(rec.String(c))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

func sortedKeys(rec api.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return api.Record{"v": v}.String("v")
	}
}

// addDataFlags registers --data, --file and --set for commands that send a record
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "JSON object to send")
	cmd.Flags().String("file", "", "Read the JSON object from a file (- for stdin)")
	cmd.Flags().StringArray("set", nil, "Set a field, as key=value (repeatable)")
}

// readData builds the request record from --file, --data and --set, in that order
func readData(cmd *cobra.Command) (api.Record, error) {
	rec := api.Record{}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		var raw []byte
		var err error
		if path == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}

	if data, _ := cmd.Flags().GetString("data"); data != "" {
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON in --data: %w", err)
		}
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		k, v, err := parseAssignment(kv)
		if err != nil {
			return nil, fmt.Errorf("invalid --set: %w", err)
		}
		rec[k] = v
	}
	return rec, nil
}

// parseAssignment splits key=value and types the value
func parseAssignment(kv string) (string, any, error) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok || k == "" {
		return "", nil, fmt.Errorf("%q: expected key=value", kv)
	}
	return k, parseScalar(v), nil
}

// parseScalar keeps numbers, booleans and JSON literals typed
func parseScalar(v string) any {
	var out any
	if err := json.Unmarshal([]byte(v), &out); err == nil {
		return out
	}
	return v
}

// addPageFlags registers --page and --per-page
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", api.DefaultPage.Page, "Page number")
	cmd.Flags().Int("per-page", api.DefaultPage.PerPage, "Items per page")
}

func readPage(cmd *cobra.Command) api.Page {
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	return api.Page{Page: page, PerPage: perPage}
}
