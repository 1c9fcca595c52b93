package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"caseburn/internal/config"
	"caseburn/internal/model"
	"caseburn/internal/pipeline"
	"caseburn/internal/viability"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagDB      string
	flagAsOf    string
	flagQuiet   bool
	flagVerbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "caseburn",
	Short: "NDIS caseload viability dashboard",
	Long: `Track how long each participant's NDIS plan funds will last at the
current rate of support, and flag plans heading for a shortfall.`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Caseload database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// initLogger builds the process logger. Warnings and errors go to stderr;
// --verbose adds debug output.
func initLogger(cmd *cobra.Command, _ []string) error {
	// The dashboard owns the terminal; its log goes to a file.
	if cmd == tuiCmd {
		return initFileLogger(filepath.Join(config.DataDir(), "caseburn.log"))
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l
	return nil
}

func initFileLogger(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l
	return nil
}

// interactive reports whether stderr is a terminal and progress is wanted.
func interactive() bool {
	if flagQuiet {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stdinIsTerminal reports whether prompts can be shown.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using default config", zap.String("path", config.Path()), zap.Error(err))
	}
	return cfg
}

func dbPath(cfg config.Config) string {
	if flagDB != "" {
		return flagDB
	}
	return config.DBPath(cfg)
}

// referenceDate returns --as-of, or now.
func referenceDate() (time.Time, error) {
	if flagAsOf == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(viability.LayoutISO, flagAsOf, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", flagAsOf)
	}
	return t, nil
}

// loadData is the shared data loading path used by all commands.
func loadData(ctx context.Context, cfg config.Config) (*pipeline.LoadResult, error) {
	path := dbPath(cfg)
	logger.Debug("loading caseload", zap.String("db", path))

	result, err := pipeline.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("caseload loaded",
		zap.Int("clients", result.Store.Len()),
		zap.Duration("elapsed", result.LoadTime))
	return result, nil
}

// caseloadView is the derived state most read commands print.
type caseloadView struct {
	Result  *pipeline.LoadResult
	Config  config.Config
	AsOf    time.Time
	Metrics []model.ClientMetrics
	Rollup  model.CaseloadRollup
}

// loadView loads the caseload and computes metrics at the reference date.
func loadView(ctx context.Context) (*caseloadView, error) {
	asOf, err := referenceDate()
	if err != nil {
		return nil, err
	}
	cfg := loadConfig()
	result, err := loadData(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metrics, rollup := pipeline.AggregateWith(result.Store.Records(), asOf,
		viability.NewOptions(cfg.General.AcceptDMYDates))
	for _, s := range rollup.Skipped {
		logger.Warn("skipping invalid record",
			zap.Int("index", s.Index),
			zap.String("id", s.ID),
			zap.String("reason", s.Reason))
	}

	return &caseloadView{
		Result:  result,
		Config:  cfg,
		AsOf:    asOf,
		Metrics: metrics,
		Rollup:  rollup,
	}, nil
}

// findClient resolves a client reference (id, id prefix, or exact name).
func (v *caseloadView) findClient(ref string) (model.ClientMetrics, error) {
	m, ok := pipeline.Find(v.Metrics, ref)
	if !ok {
		return model.ClientMetrics{}, fmt.Errorf("no single client matches %q", ref)
	}
	return m, nil
}

// save writes the store back to the database.
func (v *caseloadView) save(ctx context.Context) error {
	path := dbPath(v.Config)
	if err := pipeline.Save(ctx, path, v.Result.Store); err != nil {
		logger.Error("save failed", zap.String("db", path), zap.Error(err))
		return err
	}
	logger.Debug("caseload saved", zap.String("db", path), zap.Int("clients", v.Result.Store.Len()))
	return nil
}
