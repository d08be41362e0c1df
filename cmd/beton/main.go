// Command beton manages the concrete pour inspection records: organizations,
// construction sites and pour records, their spreadsheet import and export,
// and the request and act documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abelzeko/beton-control/internal/config"
	"github.com/abelzeko/beton-control/internal/integration/docx"
	"github.com/abelzeko/beton-control/internal/logging"
	"github.com/abelzeko/beton-control/internal/repository"
	"github.com/abelzeko/beton-control/internal/usecases"
)

// app carries the state shared by all subcommands of one invocation
type app struct {
	configDir string
	dbPath    string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree; a nil logger is built from the configuration
func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{logger: logger}

	rootCmd := &cobra.Command{
		Use:   "beton",
		Short: "Concrete pour inspection records",
		Long: `beton keeps the records of a concrete pour inspection service.

Organizations own construction sites, sites own pour records. Records can be
imported from and exported to Excel workbooks, and a request or act document
can be generated from any pour record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Directory holding config.yaml (default ./configs or .)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides configuration)")

	rootCmd.AddCommand(
		a.organizationCmd(),
		a.siteCmd(),
		a.pourCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.templateCmd(),
		a.documentCmd(),
		a.infoCmd(),
		a.botCmd(),
		a.serveCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	_ = godotenv.Load()

	var paths []string
	if a.configDir != "" {
		paths = append(paths, a.configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger
	}
	return nil
}

// records opens the database and returns the use case with its closer
func (a *app) records() (*usecases.RecordUseCase, func(), error) {
	repo, err := repository.NewSQLiteRecordRepository(a.cfg.Database.Path, a.logger)
	if err != nil {
		return nil, nil, err
	}
	renderer := docx.NewRenderer(a.cfg.Documents.RequestTemplate, a.cfg.Documents.ActTemplate, a.logger)
	closeFn := func() {
		if err := repo.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	return usecases.NewRecordUseCase(repo, renderer, a.logger), closeFn, nil
}

// withRecords adapts a handler that needs the use case into a cobra RunE
func (a *app) withRecords(run func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		uc, closeFn, err := a.records()
		if err != nil {
			return err
		}
		defer closeFn()
		return run(cmd, args, uc)
	}
}
