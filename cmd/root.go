// Package cmd is the tblx command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/tblx/internal/config"
	"github.com/oakwood-commons/tblx/internal/filter"
	"github.com/oakwood-commons/tblx/internal/formatter"
	"github.com/oakwood-commons/tblx/internal/limiter"
	"github.com/oakwood-commons/tblx/internal/ui"
	"github.com/oakwood-commons/tblx/pkg/loader"
	"github.com/oakwood-commons/tblx/pkg/logger"
	"github.com/oakwood-commons/tblx/pkg/settings"
	"github.com/oakwood-commons/tblx/pkg/store"
	"github.com/oakwood-commons/tblx/pkg/table"
)

var errNoInput = errors.New("no input: pass a file or pipe rows on stdin")

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	// persistent
	configFile string
	storageKey string
	storeURI   string
	debug      bool
	logFile    string

	columnsFile string
	ops         columnOps
	search      string
	where       string
	page        int
	pageSize    int
	export      string
	interactive bool
	noColor     bool
	width       int
}

// NewRootCmd builds the tblx command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Sort, hide, reorder, and page tabular data from JSON, YAML, or TOML",
		Long: `tblx reads a list of records and prints it as a table.

Column visibility and order can be remembered across runs with --storage-key;
the preferences are kept in the store named by --store (memory://, file:///dir,
or bolt:///file.db).`,
		Example: "\n  tblx services.json --sort name\n" +
			"  kubectl get pods -o json | tblx --hide 'metadata*' --where '_.status == \"Running\"'\n" +
			"  tblx tickets.yaml --columns columns.yaml --storage-key tickets -i\n" +
			"  tblx tickets.yaml --export tickets.xlsx\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file")
	pf.StringVar(&o.storageKey, "storage-key", "", "remember column visibility and order under this key")
	pf.StringVar(&o.storeURI, "store", "", "preference store URI (memory://, file:///dir, bolt:///file.db)")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.StringVar(&o.logFile, "log-file", "", "write logs to this file (interactive mode discards them otherwise)")

	f := rootCmd.Flags()
	f.StringVar(&o.columnsFile, "columns", "", "column definitions file (.yaml, .json, .toml); inferred from the rows when omitted")
	f.StringArrayVar(&o.ops.sorts, "sort", nil, "cycle the sort on a column (repeatable: asc, desc, off)")
	f.StringArrayVar(&o.ops.toggles, "toggle", nil, "toggle a column's visibility (repeatable)")
	f.StringArrayVar(&o.ops.hide, "hide", nil, "hide columns matching a glob (repeatable)")
	f.StringArrayVar(&o.ops.show, "show", nil, "show columns matching a glob (repeatable)")
	f.StringArrayVar(&o.ops.moves, "move", nil, "move column ACTIVE to where OVER is, as ACTIVE:OVER (repeatable)")
	f.BoolVar(&o.ops.reset, "reset", false, "reset visibility, order, and sort to defaults first")
	f.StringVar(&o.search, "search", "", "keep rows with a value containing this text")
	f.StringVar(&o.where, "where", "", "keep rows matching a CEL expression over _ (e.g. '_.age > 30')")
	f.IntVar(&o.page, "page", 0, "1-based page to print")
	f.IntVar(&o.pageSize, "page-size", 0, "rows per page (0 prints every row)")
	f.StringVar(&o.export, "export", "", "write the table to a .csv or .xlsx file instead of printing it")
	f.BoolVarP(&o.interactive, "interactive", "i", false, "browse the table interactively")
	f.BoolVar(&o.noColor, "no-color", false, "disable styled output")
	f.IntVar(&o.width, "width", 0, "output width (defaults to the terminal width)")

	rootCmd.AddCommand(newPrefsCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the command line against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// prepare merges config file and flags into the run settings and attaches
// them and a logger to the command context.
func (o *rootOptions) prepare(cmd *cobra.Command) error {
	cfg, err := config.Load(config.ResolvePath(o.configFile))
	if err != nil {
		return err
	}

	run := settings.NewCliParams()
	cfg.Apply(run)
	flags := cmd.Flags()
	if flags.Changed("store") {
		run.StoreURI = o.storeURI
	}
	if flags.Changed("page-size") {
		run.PageSize = o.pageSize
	}
	if o.noColor {
		run.NoColor = true
	}
	if o.debug {
		run.MinLogLevel = -1
	}
	run.StorageKey = cfg.StorageKey(o.storageKey)
	run.LogFile = o.logFile
	run.Interactive = o.interactive

	lgr, err := runLogger(run)
	if err != nil {
		return err
	}
	lgr = logger.WithValues(lgr,
		logger.RootCommandKey, settings.CliBinaryName,
		logger.SubCommandKey, cmd.Name(),
		logger.StorageKeyKey, run.StorageKey,
		logger.StoreKey, run.StoreURI,
	)

	cmd.Flags().Visit(func(f *pflag.Flag) {
		lgr.V(1).Info("flag set", "flag", f.Name, "value", f.Value.String())
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(logger.WithLogger(ctx, lgr))
	return nil
}

// runLogger picks the log destination: --log-file if set, nothing while the
// interactive screen owns the terminal, stderr otherwise.
func runLogger(run *settings.Run) (*logr.Logger, error) {
	switch {
	case run.LogFile != "":
		f, err := os.OpenFile(run.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return logger.GetWithSink(run.MinLogLevel, f), nil
	case run.Interactive:
		return logger.GetNoopLogger(), nil
	default:
		return logger.Get(run.MinLogLevel), nil
	}
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	run := settings.RunOrDefault(ctx)
	lgr := logger.FromContext(ctx)

	// Non-interactive output prints every row unless paging was asked for.
	pg := limiter.Config{Page: o.page}
	if run.Interactive || cmd.Flags().Changed("page-size") || cmd.Flags().Changed("page") {
		pg.PageSize = run.PageSize
	}
	if err := pg.Validate(); err != nil {
		return err
	}

	rows, err := o.loadRows(cmd, args)
	if err != nil {
		return err
	}
	columns, err := o.loadColumns(rows)
	if err != nil {
		return err
	}

	engineOpts := []table.Option{table.WithLogger(*lgr)}
	if run.Persistent() {
		st, err := store.Open(run.StoreURI)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				lgr.Error(cerr, "closing store")
			}
		}()
		engineOpts = append(engineOpts, table.WithStorage(run.StorageKey, st))
	}
	engine := table.New(rows, columns, engineOpts...)
	lgr.V(1).Info("table loaded", "rows", len(rows), "columns", len(columns))

	if err := o.ops.apply(engine); err != nil {
		return err
	}

	var rowFilter func(table.Row) bool
	if o.where != "" {
		pred, err := filter.Compile(o.where)
		if err != nil {
			return fmt.Errorf("--where: %w", err)
		}
		rowFilter = pred.Func(*lgr)
	}

	if run.Interactive {
		progOpts, cleanup := programOptions()
		defer cleanup()
		title := settings.CliBinaryName
		if len(args) == 1 && args[0] != "-" {
			title += "  " + args[0]
		}
		_, err := ui.Run(engine, ui.Options{
			Title:    title,
			Search:   o.search,
			Filter:   rowFilter,
			Page:     pg.CurrentPage(),
			PageSize: pg.PageSize,
			NoColor:  run.NoColor,
			Logger:   *lgr,
		}, 0, 0, progOpts...)
		return err
	}

	view := engine.View(table.Query{
		Search:   o.search,
		Filter:   rowFilter,
		Page:     pg.Page,
		PageSize: pg.PageSize,
	})

	if o.export != "" {
		return exportView(cmd.ErrOrStderr(), o.export, view)
	}

	width := o.width
	if width <= 0 {
		width, _ = detectTerminalSize()
	}
	_, err = io.WriteString(cmd.OutOrStdout(), formatter.Render(view, formatter.RenderOptions{
		NoColor:      run.NoColor,
		TotalWidth:   width,
		Footer:       true,
		EmptyMessage: "(no rows)",
	}))
	return err
}

func (o *rootOptions) loadRows(cmd *cobra.Command, args []string) ([]table.Row, error) {
	if len(args) == 1 && args[0] != "-" {
		rows, err := loader.LoadRowsFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", args[0], err)
		}
		return rows, nil
	}
	in := cmd.InOrStdin()
	if in == os.Stdin && !stdinIsPiped() {
		return nil, errNoInput
	}
	rows, err := loader.LoadRowsReader(in)
	if err != nil {
		return nil, fmt.Errorf("load stdin: %w", err)
	}
	return rows, nil
}

func (o *rootOptions) loadColumns(rows []table.Row) ([]table.ColumnConfig, error) {
	if o.columnsFile == "" {
		return loader.InferColumns(rows), nil
	}
	cols, err := loader.LoadColumnsFile(o.columnsFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", o.columnsFile, err)
	}
	return cols, nil
}

func exportView(status io.Writer, path string, v table.View) (err error) {
	format, err := formatter.FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := formatter.Export(f, format, v); err != nil {
		return err
	}
	_, err = fmt.Fprintf(status, "wrote %d rows to %s\n", len(v.Rows), path)
	return err
}
