// Package main provides the CLI entrypoint for bikeshare.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/bikeshare/internal/browse"
	"github.com/verte-zerg/bikeshare/internal/config"
	"github.com/verte-zerg/bikeshare/internal/dataset"
	"github.com/verte-zerg/bikeshare/internal/filter"
	"github.com/verte-zerg/bikeshare/internal/model"
	"github.com/verte-zerg/bikeshare/internal/pager"
	"github.com/verte-zerg/bikeshare/internal/session"
	"github.com/verte-zerg/bikeshare/internal/stats"
	"github.com/verte-zerg/bikeshare/internal/store"
)

const (
	defaultDataDir  = "."
	defaultColor    = "auto"
	defaultLogLevel = "warn"
)

var (
	dataDir  string
	dbPath   string
	pageSize int
	color    string
	logLevel string

	filterCity  string
	filterMonth string
	filterDay   string

	importCity string
	importName string
	importFile string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bikeshare",
		Short:         "Explore US bikeshare trip data",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runInteractiveCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataDir, "data-dir", defaultDataDir, "directory holding the city CSV files")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database for imported trips")
	flags.IntVar(&pageSize, "page-size", pager.DefaultPageSize, "raw data rows per page")
	flags.StringVar(&color, "color", defaultColor, "colorize output: auto, always or never")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "diagnostic log level: debug, info, warn or error")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the resolved settings shared by all commands.
type app struct {
	cfg      config.FileConfig
	registry *dataset.Registry
	logger   *slog.Logger
	color    bool
	store    *store.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data-dir", &dataDir, fileCfg.Data.Dir)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Data.DB)
	applyIntConfig(cmd, "page-size", &pageSize, fileCfg.Report.PageSize)
	applyStringConfig(cmd, "color", &color, fileCfg.Report.Color)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Report.LogLevel)

	if err := validateFlags(); err != nil {
		return nil, err
	}

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &app{
		cfg:      fileCfg,
		registry: fileCfg.Registry(dataDir),
		logger:   logger,
		color:    resolveColor(color),
	}, nil
}

// loader opens the trip database only when a city reads from it.
func (a *app) loader() (*dataset.Loader, error) {
	var source dataset.TripSource
	for _, c := range a.registry.Cities() {
		if c.Source != model.SourceSQLite {
			continue
		}
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		source = st
		break
	}
	return dataset.NewLoader(a.registry, source, a.logger), nil
}

func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	return st, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runInteractiveCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	loader, err := a.loader()
	if err != nil {
		return err
	}
	s := session.New(session.Options{
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
		Loader:   loader,
		PageSize: pageSize,
		Color:    a.color,
		Logger:   a.logger,
	})
	return s.Run(cmd.Context())
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterCity, "city", "", "city id (see: bikeshare cities)")
	cmd.Flags().StringVar(&filterMonth, "month", model.All, "month name (january-june) or all")
	cmd.Flags().StringVar(&filterDay, "day", model.All, "day name or all")
	_ = cmd.MarkFlagRequired("city")
}

// loadFiltered loads and filters the table selected by the filter flags.
func loadFiltered(ctx context.Context, a *app) (model.Table, model.Filter, error) {
	city, err := a.registry.Lookup(filterCity)
	if err != nil {
		return model.Table{}, model.Filter{}, fmt.Errorf("%w (available: %s)", err, strings.Join(a.registry.IDs(), ", "))
	}
	f, err := model.NewFilter(city.ID, filterMonth, filterDay)
	if err != nil {
		return model.Table{}, model.Filter{}, err
	}
	loader, err := a.loader()
	if err != nil {
		return model.Table{}, model.Filter{}, err
	}
	table, err := loader.Load(ctx, f.City)
	if err != nil {
		return model.Table{}, model.Filter{}, err
	}
	return filter.Apply(table, f), f, nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print trip statistics without prompting",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	table, f, err := loadFiltered(cmd.Context(), a)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s · month: %s · day: %s · %d trips\n%s\n",
		table.City.Name, f.MonthName(), f.DayName(), table.Len(), stats.Separator); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.NewPrinter(out, a.color).All(table)
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse raw trips in a full-screen table",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	table, f, err := loadFiltered(cmd.Context(), a)
	if err != nil {
		return err
	}
	program := tea.NewProgram(browse.NewModel(table, f), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a trip CSV into the SQLite database",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importCity, "city", "", "city id to import as")
	cmd.Flags().StringVar(&importName, "name", "", "display name (default: registry name or id)")
	cmd.Flags().StringVar(&importFile, "file", "", "CSV file (default: the city's configured path)")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	city := model.City{ID: strings.ToLower(strings.TrimSpace(importCity))}
	if known, err := a.registry.Lookup(city.ID); err == nil {
		city = known
	}
	if importName != "" {
		city.Name = importName
	}
	if city.Name == "" {
		city.Name = city.ID
	}
	path := importFile
	if path == "" {
		if city.Source != model.SourceCSV || city.Path == "" {
			return fmt.Errorf("--file is required for %q", city.ID)
		}
		path = city.Path
	}

	trips, demographics, err := dataset.LoadCSV(path)
	if err != nil {
		return &dataset.LoadError{City: city.Name, Path: path, Err: err}
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	if err := st.ImportTrips(cmd.Context(), city, trips, demographics); err != nil {
		return fmt.Errorf("failed to import trips: %w", err)
	}
	logErrf("Imported %d trips for %s into %s\n", len(trips), city.Name, dbPath)
	if city.Source != model.SourceSQLite {
		logErrf("Set source = \"sqlite\" under [cities.%q] in %s to read from the database\n", city.ID, config.DefaultConfigPath())
	}
	return nil
}

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List configured cities",
		Args:  cobra.NoArgs,
		RunE:  runCitiesCmd,
	}
}

func runCitiesCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	imported := map[string]store.ImportedCity{}
	if _, err := os.Stat(dbPath); err == nil {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		list, err := st.ListCities(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list imported cities: %w", err)
		}
		for _, c := range list {
			imported[c.ID] = c
		}
	}

	for _, c := range a.registry.Cities() {
		status := "missing"
		location := c.Path
		switch c.Source {
		case model.SourceSQLite:
			location = dbPath
			if ic, ok := imported[c.ID]; ok {
				status = fmt.Sprintf("%d trips, imported %s", ic.Trips, ic.ImportedAt.Local().Format("2006-01-02 15:04"))
			}
		default:
			if _, err := os.Stat(c.Path); err == nil {
				status = "ok"
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-16s %-7s %s (%s)\n", c.ID, c.Name, c.Source, location, status); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# bikeshare configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# dir = %q               # Directory holding chicago.csv, new_york_city.csv, washington.csv
# db = %q                # SQLite database used by "bikeshare import"

[report]
# page-size = %d          # Raw data rows per page
# color = %q          # auto, always or never
# log-level = %q      # debug, info, warn or error

# Add a city or override a bundled one. Relative paths resolve against [data] dir.
# source = "sqlite" reads trips imported with: bikeshare import --city <id> --file <csv>
#
# [cities.boston]
# name = "Boston"
# path = "boston.csv"
# source = "csv"
`,
		defaultDataDir,
		config.DefaultDBPath(),
		pager.DefaultPageSize,
		defaultColor,
		defaultLogLevel,
	)
}

func validateFlags() error {
	if pageSize <= 0 {
		return fmt.Errorf("--page-size must be > 0")
	}
	switch color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("--color must be auto, always or never")
	}
	if strings.TrimSpace(dataDir) == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}
	return nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", value, err)
	}
	return level, nil
}

func resolveColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
