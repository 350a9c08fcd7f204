package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
	"github.com/Lydell2627/portfolio-sub000/internal/store"
)

var (
	contentDBOverride string
	contentJSONOutput bool
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the local content store",
	Long:  "Import a CMS export into the local SQLite content store and inspect what it holds.",
}

var contentImportCmd = &cobra.Command{
	Use:   "import <export.ndjson|->",
	Short: "Import an NDJSON CMS export",
	Long: "Import documents from an NDJSON CMS export. Documents with an existing id are replaced.\n" +
		"Drafts and document types the site does not use are skipped. Use - to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: runContentImport,
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show document counts by type",
	Args:  cobra.NoArgs,
	RunE:  runContentList,
}

func init() {
	contentCmd.PersistentFlags().StringVar(&contentDBOverride, "db", "",
		"Database path (overrides config and PORTFOLIO_DB_PATH)")
	contentCmd.PersistentFlags().BoolVar(&contentJSONOutput, "json", false,
		"Output in JSON format")

	contentCmd.AddCommand(contentImportCmd)
	contentCmd.AddCommand(contentListCmd)
}

// openContentStore opens the store at --db or the configured database path.
func openContentStore() (*store.SQLiteStore, error) {
	path := contentDBOverride
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		path = cfg.Database.Path
	}
	return store.NewSQLiteStore(path)
}

func runContentImport(cmd *cobra.Command, args []string) error {
	var in io.Reader
	if args[0] == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		in = f
	}

	db, err := openContentStore()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.ImportDocuments(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if contentJSONOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents (%d skipped).\n", result.Total(), result.Skipped)
	return printCounts(cmd.OutOrStdout(), result.Imported)
}

func runContentList(cmd *cobra.Command, args []string) error {
	db, err := openContentStore()
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Counts(cmd.Context())
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	last, err := db.LastImport(cmd.Context())
	if err != nil {
		return err
	}

	if contentJSONOutput {
		total := 0
		for _, n := range counts {
			total += n
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"counts":      counts,
			"total":       total,
			"last_import": last,
		})
	}

	if len(counts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
		return nil
	}
	if err := printCounts(cmd.OutOrStdout(), counts); err != nil {
		return err
	}
	if last != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nLast import: %s at %s (%d documents)\n",
			last.ID, last.At.Format(time.RFC3339), last.Documents)
	}
	return nil
}

// printCounts writes a TYPE/COUNT table sorted by type.
func printCounts(out io.Writer, counts map[string]int) error {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	w := newTabWriter(out)
	fmt.Fprintln(w, "TYPE\tCOUNT")
	for _, t := range types {
		fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
	}
	return w.Flush()
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
