package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viktsys/woolauction/database"
	"github.com/viktsys/woolauction/ingest"
	"go.uber.org/zap"
)

var ingestFiles []string

var ingestCMD = &cobra.Command{
	Use:   "ingest [data-directory]",
	Short: "Load trade export CSV files into the database",
	Long: `Parse the wool rows of every Exports_HS10_by_Country CSV in the directory
(exports.data_dir when omitted) using parallel file workers, store them in
trade_exports and rebuild the monthly aggregates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		dataDir := cfg.Exports.DataDir
		if len(args) == 1 {
			dataDir = args[0]
		}

		ctx := cmd.Context()
		log.Info("Initializing database...")
		store, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return err
		}
		db, err := store.DB(ctx)
		if err != nil {
			return err
		}

		loader := ingest.NewLoader(dataDir, cfg.Exports.FileWorkers, log)
		processor := ingest.NewProcessor(db, loader, cfg.Exports.BatchSize, cfg.Exports.DBWorkers, log)

		log.Info("Starting export ingestion", zap.String("dir", dataDir))
		n, err := processor.IngestFiles(ctx, ingestFiles, ingest.Options{})
		if errors.Is(err, ingest.ErrFilesSkipped) && n > 0 {
			fmt.Printf("Export ingestion partially completed: %d rows stored\n", n)
		}
		if err != nil {
			return fmt.Errorf("failed to ingest exports: %w", err)
		}

		fmt.Printf("Export ingestion completed: %d rows stored\n", n)
		return nil
	},
}

func init() {
	ingestCMD.Flags().StringSliceVar(&ingestFiles, "file", nil, "ingest only these file names (repeatable)")
}
