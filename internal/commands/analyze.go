package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/burrima/bank-statement-analysis/internal/category"
	"github.com/burrima/bank-statement-analysis/internal/config"
	"github.com/burrima/bank-statement-analysis/internal/filter"
	"github.com/burrima/bank-statement-analysis/internal/importer"
	"github.com/burrima/bank-statement-analysis/internal/label"
	"github.com/burrima/bank-statement-analysis/internal/records"
	"github.com/burrima/bank-statement-analysis/internal/render"
)

type analyzeOptions struct {
	configPath     string
	configExplicit bool
	categories     string
	statement      string
	statementType  string
	filter         string
	print          string
	interactive    bool
}

func newAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Categorize and display a bank statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configExplicit = cmd.Flags().Changed("config")
			return runAnalyze(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.categories, "categories", "c", "", "categories definition file (yaml)")
	cmd.Flags().StringVarP(&opts.statement, "statement", "s", "", "bank statement file (csv)")
	_ = cmd.MarkFlagRequired("statement")
	cmd.Flags().StringVarP(&opts.statementType, "type", "t", "", "bank statement type (see 'bsa formats')")
	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "display filter (e.g. 'Kategorie=unknown,Belastung>50')")
	cmd.Flags().StringVarP(&opts.print, "print", "p", "", "print options: table, summary, csv (default 'table,summary')")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "interactively categorize unknown records")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "tool config file")

	return cmd
}

func runAnalyze(ctx context.Context, opts analyzeOptions, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.categories == "" {
		opts.categories = cfg.Categories
	}
	if opts.statementType == "" {
		opts.statementType = cfg.StatementType
	}
	if opts.print == "" {
		opts.print = cfg.Print
	}

	if opts.categories == "" {
		return fmt.Errorf("categories file required (--categories or bsa.yaml)")
	}
	if opts.statementType == "" {
		return fmt.Errorf("statement type required (--type or bsa.yaml)")
	}

	modes, err := parsePrintModes(opts.print)
	if err != nil {
		return err
	}

	registry := importer.DefaultRegistry()
	parser := registry.Get(opts.statementType)
	if parser == nil {
		return fmt.Errorf("statement type %q not supported (have: %s)",
			opts.statementType, strings.Join(registry.Formats(), ", "))
	}

	table, err := category.Load(opts.categories)
	if err != nil {
		return err
	}

	rows, err := importer.ParseFile(parser, opts.statement)
	if err != nil {
		return err
	}

	store, err := records.New(parser.Schema(), rows)
	if err != nil {
		return err
	}
	slog.Debug("statement loaded", "format", parser.Format(), "records", store.Len())

	if err := category.Apply(store, table); err != nil {
		return err
	}

	filtered, err := filter.Apply(store, opts.filter)
	if err != nil {
		return err
	}
	slog.Debug("filter applied", "expression", opts.filter, "matched", filtered.Len())

	if opts.interactive {
		session := label.NewSession(table, func(t *category.Table) error {
			return category.Save(opts.categories, t)
		}, in, out)

		state, err := session.Run(ctx, filtered)
		if err != nil {
			return err
		}
		slog.Info("interactive categorization finished", "state", state, "confirmed", session.Confirmed())

		if state == label.StateAborted {
			// Clean exit; everything confirmed so far is already saved.
			fmt.Fprintf(out, "\nAborted, %d pattern(s) saved.\n", session.Confirmed())
			return nil
		}

		// Pick up the new patterns before rendering.
		if err := category.Apply(store, table); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	for _, mode := range modes {
		switch mode {
		case "table":
			err = render.Table(out, filtered)
		case "summary":
			err = render.Summary(out, filtered, table)
		case "csv":
			err = render.CSV(out, filtered)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(opts analyzeOptions) (*config.Config, error) {
	if opts.configExplicit {
		return config.Load(opts.configPath)
	}
	return config.LoadOptional(opts.configPath)
}

// parsePrintModes validates the -p flag. csv produces machine output and
// cannot be combined with the human-readable modes.
func parsePrintModes(s string) ([]string, error) {
	var modes []string
	for _, m := range strings.Split(s, ",") {
		m = strings.TrimSpace(m)
		switch m {
		case "table", "summary", "csv":
			modes = append(modes, m)
		case "":
		default:
			return nil, fmt.Errorf("unknown print option %q (table, summary, csv)", m)
		}
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no print options given")
	}
	for _, m := range modes {
		if m == "csv" && len(modes) > 1 {
			return nil, fmt.Errorf("print option csv cannot be combined with others")
		}
	}
	return modes, nil
}
